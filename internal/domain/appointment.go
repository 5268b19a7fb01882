package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

// AppointmentStatus статус записи на приём
// Закрытое множество: booked и rescheduled - активные статусы,
// остальные - терминальные (переходы из них запрещены)
type AppointmentStatus string

const (
	StatusBooked            AppointmentStatus = "booked"
	StatusRescheduled       AppointmentStatus = "rescheduled"
	StatusCancelledByOwner  AppointmentStatus = "cancelled_by_owner"
	StatusCancelledByClinic AppointmentStatus = "cancelled_by_clinic"
	StatusNoShow            AppointmentStatus = "no_show"
	StatusCompleted         AppointmentStatus = "completed"
)

// AppointmentType способ оказания услуги
type AppointmentType string

const (
	TypeInPerson  AppointmentType = "in_person"
	TypeHomeVisit AppointmentType = "home_visit"
)

var (
	// ErrInvalidTransition возвращается при попытке недопустимого перехода статуса
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrUnknownStatus возвращается при неизвестном статусе
	ErrUnknownStatus = errors.New("domain: unknown appointment status")

	// ErrUnknownAppointmentType возвращается при неизвестном типе приёма
	ErrUnknownAppointmentType = errors.New("domain: unknown appointment type")
)

// ParseStatus валидирует строку и возвращает AppointmentStatus
func ParseStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusBooked, StatusRescheduled, StatusCancelledByOwner,
		StatusCancelledByClinic, StatusNoShow, StatusCompleted:
		return AppointmentStatus(s), nil
	default:
		return "", ErrUnknownStatus
	}
}

// ParseAppointmentType валидирует строку и возвращает AppointmentType
func ParseAppointmentType(s string) (AppointmentType, error) {
	switch AppointmentType(s) {
	case TypeInPerson, TypeHomeVisit:
		return AppointmentType(s), nil
	default:
		return "", ErrUnknownAppointmentType
	}
}

// IsActive проверяет, что статус активный (допускает дальнейшие переходы)
func (s AppointmentStatus) IsActive() bool {
	return s == StatusBooked || s == StatusRescheduled
}

// IsTerminal проверяет, что статус терминальный
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCancelledByOwner, StatusCancelledByClinic, StatusNoShow, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет допустимость перехода s -> next по графу переходов
// Переходы возможны только из активных статусов; rescheduled повторно входим
// (rescheduled -> rescheduled при повторном переносе)
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if !s.IsActive() {
		return false
	}
	switch next {
	case StatusRescheduled, StatusCancelledByOwner, StatusCancelledByClinic,
		StatusNoShow, StatusCompleted:
		return true
	default:
		return false
	}
}

// ValidateTransition возвращает ErrInvalidTransition, если переход запрещён
func (s AppointmentStatus) ValidateTransition(next AppointmentStatus) error {
	if _, err := ParseStatus(string(next)); err != nil {
		return err
	}
	if !s.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	return nil
}

// Appointment запись на приём в клинику
// Расписание (ScheduledDate/Start/End) денормализовано из слота в момент
// бронирования: последующая перегенерация слотов не двигает подтверждённую запись
type Appointment struct {
	ID               uuid.UUID
	ConfirmationCode string
	ClinicID         uuid.UUID
	OwnerID          uuid.UUID
	PetID            uuid.UUID
	VetID            *uuid.UUID // nil = любой подходящий врач
	ServiceID        int64
	SlotID           *uuid.UUID // nil = свободная запись без слота

	AppointmentType AppointmentType
	ScheduledDate   time.Time
	ScheduledStart  types.TimeString
	ScheduledEnd    types.TimeString

	// Поля домашнего визита (обязательны при AppointmentType = home_visit)
	HomeAddressLine1 *string
	HomeAddressLine2 *string
	HomeCity         *string
	HomeState        *string
	HomePostalCode   *string
	HomeAccessNotes  *string

	OwnerNotes  *string
	ClinicNotes *string

	Status      AppointmentStatus
	IsEmergency bool

	CancelledBy        *uuid.UUID
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive проверяет, что запись активна
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// CanBeCancelled проверяет, можно ли отменить запись
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.IsActive()
}

// CanBeRescheduled проверяет, можно ли перенести запись
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status.IsActive()
}

// IsHomeVisit проверяет, что приём - домашний визит
func (a *Appointment) IsHomeVisit() bool {
	return a.AppointmentType == TypeHomeVisit
}

// ScheduledEndAt возвращает момент окончания приёма как time.Time
func (a *Appointment) ScheduledEndAt() (time.Time, error) {
	end, err := time.Parse(TimeFormat, a.ScheduledEnd.String())
	if err != nil {
		return time.Time{}, err
	}
	d := a.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), end.Hour(), end.Minute(), 0, 0, d.Location()), nil
}

// AppointmentsFilter фильтр записей клиники
type AppointmentsFilter struct {
	ClinicID        uuid.UUID          // Обязательный параметр
	VetID           *uuid.UUID         // Фильтр по врачу (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли терминальные записи
}

// OwnerAppointmentsFilter фильтр записей владельца питомца
type OwnerAppointmentsFilter struct {
	OwnerID      uuid.UUID
	Status       *AppointmentStatus
	UpcomingOnly bool // Только будущие активные записи
	Page         int
	PageSize     int
}
