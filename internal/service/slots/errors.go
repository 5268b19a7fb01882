package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrClinicNotFound возвращается, когда клиника не найдена
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrSlotHasBookings возвращается при блокировке слота с активными записями
	// без явного запроса каскадной отмены
	ErrSlotHasBookings = errors.New("slot has active appointments")

	// ErrNoSlotsAvailable возвращается, когда открытых слотов нет
	ErrNoSlotsAvailable = errors.New("no slots available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrRetryable возвращается при конфликте сериализации, можно повторить запрос
	ErrRetryable = errors.New("transient conflict, retry the request")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
