package slots

import (
	"context"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	NextOpen(ctx context.Context, filter domain.SlotsFilter) (*domain.Slot, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	DecrementBooked(ctx context.Context, id uuid.UUID) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListActiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus, cancelledBy *uuid.UUID, reason string) error
}

// HistoryRepository интерфейс репозитория аудита переходов
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.StatusHistoryEntry) error
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
