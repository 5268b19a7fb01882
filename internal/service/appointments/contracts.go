package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	GetByCode(ctx context.Context, code string) (*domain.Appointment, error)
	ListByOwner(ctx context.Context, filter domain.OwnerAppointmentsFilter) ([]*domain.Appointment, int, error)
	ListByClinicWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	ListStaleActive(ctx context.Context, cutoff time.Time) ([]*domain.Appointment, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, newStatus domain.AppointmentStatus) error
	Cancel(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus, cancelledBy *uuid.UUID, reason string) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	DecrementBooked(ctx context.Context, id uuid.UUID) error
}

// HistoryRepository интерфейс репозитория аудита переходов
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.StatusHistoryEntry) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.StatusHistoryEntry, error)
}

// ClinicServiceClient интерфейс клиента для ClinicService
type ClinicServiceClient interface {
	GetClinic(ctx context.Context, clinicID uuid.UUID) (*clinicservice.Clinic, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
