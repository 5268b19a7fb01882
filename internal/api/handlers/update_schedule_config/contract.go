package update_schedule_config

import (
	"context"

	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig/models"
)

type ScheduleConfigService interface {
	Upsert(ctx context.Context, req *models.UpsertConfigRequest) (*models.ConfigResponse, error)
	Delete(ctx context.Context, req *models.DeleteConfigRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
