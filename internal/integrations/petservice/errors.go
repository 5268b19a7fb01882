package petservice

import "errors"

var (
	// ErrPetNotFound возвращается, когда питомец не найден
	ErrPetNotFound = errors.New("pet not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("petservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("petservice client: invalid response")
)
