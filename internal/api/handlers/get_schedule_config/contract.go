package get_schedule_config

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig/models"
)

type ScheduleConfigService interface {
	GetEffective(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*models.ConfigResponse, error)
	List(ctx context.Context, clinicID uuid.UUID, userID uuid.UUID) (*models.ConfigListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
