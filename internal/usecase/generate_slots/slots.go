package generate_slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

// buildDaySlots нарезает рабочее окно дня на слоты фиксированной длительности
// Окна, не помещающиеся до закрытия целиком, отбрасываются. Слоты, начинающиеся
// раньше, чем now + leadTime, не создаются
func buildDaySlots(
	req *Request,
	schedule clinicservice.DaySchedule,
	date time.Time,
	now time.Time,
	durationMinutes int,
	capacity int,
	leadTimeMinutes int,
) ([]*domain.Slot, error) {
	if !schedule.IsOpen || schedule.OpenTime == nil || schedule.CloseTime == nil {
		return nil, nil
	}

	openTime, err := types.NewTimeStringFromString(*schedule.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid open time %q: %v", *schedule.OpenTime, err)
	}
	closeTime, err := types.NewTimeStringFromString(*schedule.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid close time %q: %v", *schedule.CloseTime, err)
	}

	earliest := now.Add(time.Duration(leadTimeMinutes) * time.Minute)

	slotType := domain.AppointmentType(req.SlotType)
	slots := make([]*domain.Slot, 0)

	current := openTime
	for {
		end, err := current.AddMinutes(durationMinutes)
		if err != nil {
			// Окно пересекло полночь
			break
		}
		if end.IsAfter(closeTime) {
			break
		}

		if slotStartAt(date, current).After(earliest) || slotStartAt(date, current).Equal(earliest) {
			slots = append(slots, &domain.Slot{
				ID:        uuid.New(),
				ClinicID:  req.ClinicID,
				VetID:     req.VetID,
				ServiceID: req.ServiceID,
				SlotDate:  date,
				StartTime: current,
				EndTime:   end,
				SlotType:  slotType,
				Capacity:  capacity,
			})
		}

		current = end
	}

	return slots, nil
}

// slotStartAt собирает момент начала слота из даты и времени "HH:MM"
func slotStartAt(date time.Time, start types.TimeString) time.Time {
	t, err := time.Parse(domain.TimeFormat, start.String())
	if err != nil {
		return time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}
