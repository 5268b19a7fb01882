package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	clinicClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
)

// UseCase use case запроса доступности слотов
// Результат группируется по дням; дни без открытых слотов (выходные,
// blackout, всё выкуплено) входят в ответ с пустым списком
type UseCase struct {
	slotRepo     SlotRepository
	clinicClient ClinicServiceClient
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	clinicClient ClinicServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		clinicClient: clinicClient,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case запроса доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: clinic=%s, service=%d, range=%s..%s",
		req.ClinicID, req.ServiceID,
		req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	slotType, err := domain.ParseAppointmentType(req.SlotType)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid slot type=%s", req.SlotType)
		return nil, fmt.Errorf("%w: invalid slot type", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 2. Валидация диапазона
	if err := validateDateRange(req.StartDate, req.EndDate, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: date range validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем клинику
	clinic, err := uc.clinicClient.GetClinic(ctx, req.ClinicID)
	if err != nil {
		if errors.Is(err, clinicClient.ErrClinicNotFound) {
			uc.logger.Warn("GetAvailableSlots: clinic id=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get clinic id=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: failed to get clinic: %v", ErrInternal, err)
	}

	// 4. Проверяем врача
	if req.VetID != nil && !clinic.HasVet(*req.VetID) {
		uc.logger.Warn("GetAvailableSlots: vet id=%s not found in clinic=%s", *req.VetID, req.ClinicID)
		return nil, ErrVetNotFound
	}

	// 5. Проверяем услугу (неактивная услуга недоступна для записи)
	if _, err := uc.clinicClient.GetService(ctx, req.ClinicID, req.ServiceID); err != nil {
		if errors.Is(err, clinicClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 6. Получаем открытые слоты диапазона одним запросом
	filter := domain.SlotsFilter{
		ClinicID:  req.ClinicID,
		ServiceID: req.ServiceID,
		StartDate: dateOnly(req.StartDate),
		EndDate:   dateOnly(req.EndDate),
		SlotType:  slotType,
		VetID:     req.VetID,
	}

	open, err := uc.slotRepo.ListOpen(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list open slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list open slots: %v", ErrInternal, err)
	}

	// 7. Группируем по дням, включая пустые
	days := groupByDay(open, dateOnly(req.StartDate), dateOnly(req.EndDate), now)

	total := 0
	for _, d := range days {
		total += len(d.Slots)
	}
	uc.logger.Info("GetAvailableSlots: %d open slots across %d days for clinic=%s, service=%d",
		total, len(days), req.ClinicID, req.ServiceID)

	return &Response{
		ClinicID:  req.ClinicID,
		ServiceID: req.ServiceID,
		SlotType:  string(slotType),
		StartDate: req.StartDate.Format(domain.DateFormat),
		EndDate:   req.EndDate.Format(domain.DateFormat),
		Days:      days,
	}, nil
}

// groupByDay раскладывает слоты по дням диапазона
// Слоты, уже начавшиеся к текущему моменту, отбрасываются
func groupByDay(slots []*domain.Slot, startDate, endDate, now time.Time) []Day {
	byDate := make(map[string][]Slot)

	for _, s := range slots {
		if !slotInFuture(s, now) {
			continue
		}
		key := s.SlotDate.Format(domain.DateFormat)
		byDate[key] = append(byDate[key], Slot{
			ID:             s.ID,
			StartTime:      s.StartTime.String(),
			EndTime:        s.EndTime.String(),
			VetID:          s.VetID,
			AvailableSpots: s.Remaining(),
			TotalSpots:     s.Capacity,
		})
	}

	days := make([]Day, 0)
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		key := date.Format(domain.DateFormat)
		daySlots := byDate[key]
		if daySlots == nil {
			daySlots = []Slot{}
		}
		days = append(days, Day{Date: key, Slots: daySlots})
	}

	return days
}

// slotInFuture проверяет, что слот ещё не начался
func slotInFuture(s *domain.Slot, now time.Time) bool {
	start, err := time.Parse(domain.TimeFormat, s.StartTime.String())
	if err != nil {
		return false
	}
	d := s.SlotDate
	startAt := time.Date(d.Year(), d.Month(), d.Day(), start.Hour(), start.Minute(), 0, 0, now.Location())
	return startAt.After(now)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
