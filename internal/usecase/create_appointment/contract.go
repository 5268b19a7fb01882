package create_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/petservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	IncrementBooked(ctx context.Context, id uuid.UUID) error
}

// HistoryRepository интерфейс репозитория аудита переходов
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.StatusHistoryEntry) error
}

// ClinicServiceClient интерфейс клиента для ClinicService
type ClinicServiceClient interface {
	GetClinic(ctx context.Context, clinicID uuid.UUID) (*clinicservice.Clinic, error)
	GetService(ctx context.Context, clinicID uuid.UUID, serviceID int64) (*clinicservice.Service, error)
}

// PetServiceClient интерфейс клиента для PetService
type PetServiceClient interface {
	GetPet(ctx context.Context, petID uuid.UUID) (*petservice.Pet, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// CodeGenerator интерфейс генератора confirmation code
type CodeGenerator interface {
	Generate() string
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
