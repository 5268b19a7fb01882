package get_appointment_by_code

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments"
)

const (
	msgInvalidID           = "некорректный формат идентификатора, ожидается UUID"
	msgMissingCode         = "код подтверждения обязателен"
	msgAppointmentNotFound = "запись с таким кодом подтверждения не найдена"
	msgAccessDenied        = "нет доступа к этой записи"
)

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/by-code/{code}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("GET /appointments/by-code/{code} - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
	if code == "" {
		h.logger.Warn("GET /appointments/by-code/{code} - Missing confirmation code")
		handlers.RespondBadRequest(w, msgMissingCode)
		return
	}

	result, err := h.service.GetByCode(r.Context(), code, userID)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /appointments/by-code/{code} - Appointment not found: code=%s", code)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /appointments/by-code/{code} - Access denied: code=%s, user=%s", code, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("GET /appointments/by-code/{code} - Failed to get appointment: code=%s, error=%v", code, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments/by-code/{code} - Appointment retrieved: id=%s, code=%s", result.ID, code)
	handlers.RespondJSON(w, http.StatusOK, result)
}
