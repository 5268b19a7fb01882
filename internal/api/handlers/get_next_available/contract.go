package get_next_available

import (
	"context"

	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
)

type SlotsService interface {
	NextAvailable(ctx context.Context, req *models.NextAvailableRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
