package get_appointment_history

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
)

type AppointmentsService interface {
	GetHistory(ctx context.Context, appointmentID uuid.UUID, userID uuid.UUID) (*models.HistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
