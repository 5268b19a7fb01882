package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var (
	// ErrMissingUserID возвращается, когда запрос пришёл без X-User-ID
	ErrMissingUserID = errors.New("handlers: missing X-User-ID header")

	// ErrInvalidUUID возвращается при некорректном UUID в пути или заголовке
	ErrInvalidUUID = errors.New("handlers: invalid uuid")
)

// UserID извлекает аутентифицированного пользователя из заголовка X-User-ID
// Заголовок проставляет API gateway после проверки токена
func UserID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, ErrMissingUserID
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return id, nil
}

// PathUUID извлекает UUID параметр из пути запроса
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return id, nil
}
