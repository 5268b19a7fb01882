package get_available_slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClinicID == uuid.Nil {
		return fmt.Errorf("%w: clinicID is required", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}

	return nil
}

// validateDateRange проверяет границы и ширину диапазона
func validateDateRange(startDate, endDate, now time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidDateRange)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOnly := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, endDate.Location())
	if endOnly.Before(today) {
		return fmt.Errorf("%w: range is entirely in the past", ErrInvalidDateRange)
	}

	days := int(endOnly.Sub(time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())).Hours()/24) + 1
	if days > domain.MaxAvailabilityRangeDays {
		return fmt.Errorf("%w: at most %d days per request", ErrRangeTooWide, domain.MaxAvailabilityRangeDays)
	}

	return nil
}
