package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrSlotNotFound возвращается, когда целевой слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrNotActive возвращается при переносе записи в терминальном статусе
	ErrNotActive = errors.New("appointment is not active")

	// ErrSlotConflict возвращается, когда целевой слот заполнен или заблокирован
	ErrSlotConflict = errors.New("slot is full or blocked")

	// ErrSlotMismatch возвращается, когда целевой слот не подходит записи
	ErrSlotMismatch = errors.New("slot does not match the appointment")

	// ErrSlotInPast возвращается при переносе на уже начавшийся слот
	ErrSlotInPast = errors.New("slot is in the past")

	// ErrSameSlot возвращается при переносе на тот же слот
	ErrSameSlot = errors.New("appointment is already on this slot")

	// ErrRetryable возвращается при конфликте сериализации, можно повторить запрос
	ErrRetryable = errors.New("transient conflict, retry the request")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
