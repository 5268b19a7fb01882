package generate_slots

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на генерацию слотов
// Диапазон дат включительный. ServiceID = nil генерирует слоты без привязки
// к услуге (длительность по умолчанию), VetID = nil - без привязки к врачу
type Request struct {
	UserID    uuid.UUID  // Сотрудник клиники, запустивший генерацию
	ClinicID  uuid.UUID  // Клиника
	ServiceID *int64     // Услуга (опционально)
	VetID     *uuid.UUID // Врач (опционально)
	SlotType  string     // in_person / home_visit
	StartDate time.Time  // Начало диапазона (без времени)
	EndDate   time.Time  // Конец диапазона (без времени)
}

// Response модель ответа на генерацию слотов
type Response struct {
	ClinicID     uuid.UUID `json:"clinicId"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	SlotsCreated int64     `json:"slotsCreated"`
	SlotsRemoved int64     `json:"slotsRemoved"` // Пустые слоты, замененные при перегенерации
	DaysSkipped  []string  `json:"daysSkipped"`  // Закрытые и blackout дни
}
