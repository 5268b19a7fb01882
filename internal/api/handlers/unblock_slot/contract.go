package unblock_slot

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
)

type SlotsService interface {
	Unblock(ctx context.Context, slotID uuid.UUID, req *models.UnblockSlotRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
