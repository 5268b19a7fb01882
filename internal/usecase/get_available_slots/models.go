package get_available_slots

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса доступности
// Диапазон дат включительный, не шире MaxAvailabilityRangeDays
type Request struct {
	ClinicID  uuid.UUID  // Клиника
	ServiceID int64      // Услуга
	SlotType  string     // in_person / home_visit
	VetID     *uuid.UUID // Фильтр по врачу (опционально)
	StartDate time.Time  // Начало диапазона (без времени)
	EndDate   time.Time  // Конец диапазона (без времени)
}

// Slot открытое окно в ответе доступности
type Slot struct {
	ID             uuid.UUID  `json:"id"`
	StartTime      string     `json:"startTime"` // "10:00"
	EndTime        string     `json:"endTime"`   // "10:30"
	VetID          *uuid.UUID `json:"vetId,omitempty"`
	AvailableSpots int        `json:"availableSpots"`
	TotalSpots     int        `json:"totalSpots"`
}

// Day слоты одного дня
// Дни без открытых слотов присутствуют в ответе с пустым списком
type Day struct {
	Date  string `json:"date"` // "2026-09-15"
	Slots []Slot `json:"slots"`
}

// Response модель ответа доступности, сгруппированная по дням
type Response struct {
	ClinicID  uuid.UUID `json:"clinicId"`
	ServiceID int64     `json:"serviceId"`
	SlotType  string    `json:"slotType"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Days      []Day     `json:"days"`
}
