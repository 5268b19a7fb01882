package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

// Slot бронируемое временное окно клиники
// Инвариант: 0 <= BookedCount <= Capacity в любой момент, включая середину
// транзакции; обеспечивается условным UPDATE в репозитории, не приложением
type Slot struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	VetID     *uuid.UUID // nil = любой подходящий врач
	ServiceID *int64     // nil = любая услуга

	SlotDate  time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	SlotType  AppointmentType

	Capacity    int // Максимум одновременных бронирований
	BookedCount int // Текущее количество бронирований
	Blocked     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining возвращает количество свободных мест
func (s *Slot) Remaining() int {
	remaining := s.Capacity - s.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsOpen проверяет, что слот доступен для бронирования
func (s *Slot) IsOpen() bool {
	return !s.Blocked && s.BookedCount < s.Capacity
}

// IsFull проверяет, что свободных мест нет
func (s *Slot) IsFull() bool {
	return s.BookedCount >= s.Capacity
}

// HasBookings проверяет, что на слот есть хотя бы одно бронирование
func (s *Slot) HasBookings() bool {
	return s.BookedCount > 0
}

// AcceptsService проверяет совместимость слота с услугой
// Слот без привязки к услуге принимает любую
func (s *Slot) AcceptsService(serviceID int64) bool {
	return s.ServiceID == nil || *s.ServiceID == serviceID
}

// SlotsFilter фильтр для выборки открытых слотов
type SlotsFilter struct {
	ClinicID  uuid.UUID
	ServiceID int64
	StartDate time.Time
	EndDate   time.Time
	SlotType  AppointmentType
	VetID     *uuid.UUID // Фильтр по врачу (опционально)
}
