package cancel_appointment

import (
	"errors"
	"io"
	"net/http"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
)

const (
	msgInvalidID           = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgAppointmentNotFound = "запись на приём не найдена"
	msgAccessDenied        = "нет доступа к этой записи"
	msgNotActive           = "запись уже отменена или завершена"
	msgRetryLater          = "временный конфликт при отмене, повторите запрос"
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

// Handle PATCH /api/v1/appointments/{appointmentId}/cancel
// Повторная отмена возвращает 409: место в слоте освобождается ровно один раз
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	// Тело опционально: отмена без причины допустима
	var req CancelAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Cancel(r.Context(), appointmentID, &models.CancelAppointmentRequest{
		UserID: userID,
		Reason: req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Appointment not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Access denied: id=%s, user=%s", appointmentID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, appointments.ErrNotActive):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Appointment not active: id=%s", appointmentID)
			handlers.RespondConflict(w, msgNotActive)

		case errors.Is(err, appointments.ErrRetryable):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Transient conflict: id=%s", appointmentID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRetryLater)

		default:
			h.logger.Error("PATCH /appointments/{id}/cancel - Failed to cancel: id=%s, user=%s, error=%v",
				appointmentID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: id=%s, user=%s, status=%s",
		appointmentID, userID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
