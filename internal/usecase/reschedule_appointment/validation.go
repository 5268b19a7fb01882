package reschedule_appointment

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	if req.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointmentID is required", ErrInvalidInput)
	}
	if req.NewSlotID == uuid.Nil {
		return fmt.Errorf("%w: newSlotID is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	return nil
}
