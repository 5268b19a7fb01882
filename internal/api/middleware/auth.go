package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
)

const msgUnauthorized = "требуется заголовок X-User-ID"

// Auth проверяет наличие корректного X-User-ID в запросе
// Сам токен валидирует API gateway, сюда приходит уже проверенный ID
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		if _, err := uuid.Parse(raw); err != nil {
			handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
