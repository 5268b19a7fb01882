package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClinicScheduleConfig параметры генерации слотов клиники
// Иерархия конфигурации:
// 1. Для конкретной услуги (clinic_id, service_id)
// 2. Для всей клиники (clinic_id, NULL)
// 3. Встроенные дефолты
type ClinicScheduleConfig struct {
	ID        int64
	ClinicID  uuid.UUID
	ServiceID *int64 // NULL = конфигурация для всех услуг клиники

	SlotCapacity       int // Максимум одновременных бронирований на слот
	LeadTimeMinutes    int // Минимальное время до начала слота при генерации
	AdvanceBookingDays int // Горизонт генерации, 0 = без ограничения

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsClinicWide проверяет, что конфигурация действует для всех услуг клиники
func (c *ClinicScheduleConfig) IsClinicWide() bool {
	return c.ServiceID == nil
}

// IsServiceSpecific проверяет, что конфигурация задана для конкретной услуги
func (c *ClinicScheduleConfig) IsServiceSpecific() bool {
	return c.ServiceID != nil
}

// HasAdvanceLimit проверяет, что задан горизонт бронирования
func (c *ClinicScheduleConfig) HasAdvanceLimit() bool {
	return c.AdvanceBookingDays > 0
}

// DefaultScheduleConfig возвращает конфигурацию со встроенными дефолтами
func DefaultScheduleConfig() *ClinicScheduleConfig {
	return &ClinicScheduleConfig{
		SlotCapacity:       DefaultSlotCapacity,
		LeadTimeMinutes:    DefaultLeadTimeMinutes,
		AdvanceBookingDays: DefaultAdvanceBookingDays,
	}
}
