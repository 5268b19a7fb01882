package block_slot

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
)

type SlotsService interface {
	Block(ctx context.Context, slotID uuid.UUID, req *models.BlockSlotRequest) (*models.BlockSlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
