package create_appointment

import "errors"

var (
	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrPetNotFound возвращается, когда питомец не найден
	ErrPetNotFound = errors.New("pet not found")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrAccessDenied возвращается, когда питомец принадлежит другому владельцу
	ErrAccessDenied = errors.New("access denied")

	// ErrSlotConflict возвращается, когда слот заполнен или заблокирован
	ErrSlotConflict = errors.New("slot is full or blocked")

	// ErrSlotMismatch возвращается, когда слот не подходит клинике, услуге или типу приёма
	ErrSlotMismatch = errors.New("slot does not match the request")

	// ErrSlotInPast возвращается при попытке записи на уже начавшийся слот
	ErrSlotInPast = errors.New("slot is in the past")

	// ErrHomeVisitsNotOffered возвращается, когда клиника не делает домашние визиты
	ErrHomeVisitsNotOffered = errors.New("clinic does not offer home visits")

	// ErrCodeExhausted возвращается, когда не удалось подобрать уникальный confirmation code
	ErrCodeExhausted = errors.New("failed to generate unique confirmation code")

	// ErrRetryable возвращается при конфликте сериализации, можно повторить запрос
	ErrRetryable = errors.New("transient conflict, retry the request")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
