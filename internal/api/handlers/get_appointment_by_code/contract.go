package get_appointment_by_code

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
)

type AppointmentsService interface {
	GetByCode(ctx context.Context, code string, userID uuid.UUID) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
