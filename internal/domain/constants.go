package domain

import "errors"

// Значения конфигурации по умолчанию
const (
	DefaultSlotCapacity        = 1
	DefaultLeadTimeMinutes     = 1440 // 1 сутки
	DefaultAdvanceBookingDays  = 14
	DefaultSlotDurationMinutes = 30 // Для слотов без привязки к услуге
)

// Константы бизнес-валидации
const (
	MinSlotCapacity    = 1
	MaxSlotCapacity    = 50
	MinLeadTimeMinutes = 0
	MaxLeadTimeMinutes = 20160 // 2 недели
	MinAdvanceDays     = 0
	MaxAdvanceDays     = 365

	// MaxAvailabilityRangeDays максимальная ширина диапазона запроса доступности
	MaxAvailabilityRangeDays = 14

	MaxNotesLength       = 1000
	MaxReasonLength      = 500
	MaxAddressLineLength = 255
	MaxCityLength        = 100
	MaxStateLength       = 50
	MaxPostalCodeLength  = 20
	MaxAccessNotesLength = 500
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

var (
	// ErrUnknownActor возвращается при неизвестном инициаторе перехода
	ErrUnknownActor = errors.New("domain: unknown history actor")
)

// TerminalStatuses список терминальных статусов
// Используется при фильтрации активных записей
var TerminalStatuses = []AppointmentStatus{
	StatusCancelledByOwner,
	StatusCancelledByClinic,
	StatusNoShow,
	StatusCompleted,
}

// ActiveStatuses список активных статусов
// Условные UPDATE репозитория записей разрешают переходы только из них
var ActiveStatuses = []AppointmentStatus{
	StatusBooked,
	StatusRescheduled,
}
