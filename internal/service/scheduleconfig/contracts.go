package scheduleconfig

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
)

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	Upsert(ctx context.Context, config *domain.ClinicScheduleConfig) (*domain.ClinicScheduleConfig, error)
	GetWithHierarchy(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*domain.ClinicScheduleConfig, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*domain.ClinicScheduleConfig, error)
	Delete(ctx context.Context, clinicID uuid.UUID, serviceID *int64) error
}

// ClinicServiceClient интерфейс клиента для ClinicService
type ClinicServiceClient interface {
	GetClinic(ctx context.Context, clinicID uuid.UUID) (*clinicservice.Clinic, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
