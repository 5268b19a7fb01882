package unblock_slot

import (
	"errors"
	"net/http"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
)

const (
	msgInvalidID    = "некорректный формат идентификатора, ожидается UUID"
	msgSlotNotFound = "слот не найден"
	msgAccessDenied = "снятие блокировки доступно только сотрудникам клиники"
	msgRetryLater   = "временный конфликт, повторите запрос"
)

type Handler struct {
	service SlotsService
	logger  Logger
}

func NewHandler(service SlotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/slots/{slotId}/unblock
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/unblock - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	slotID, err := handlers.PathUUID(r, "slotId")
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/unblock - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.service.Unblock(r.Context(), slotID, &models.UnblockSlotRequest{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PATCH /slots/{id}/unblock - Slot not found: slot=%s", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, slots.ErrAccessDenied):
			h.logger.Warn("PATCH /slots/{id}/unblock - Access denied: slot=%s, user=%s", slotID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, slots.ErrRetryable):
			h.logger.Warn("PATCH /slots/{id}/unblock - Transient conflict: slot=%s", slotID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRetryLater)

		default:
			h.logger.Error("PATCH /slots/{id}/unblock - Failed to unblock slot: slot=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /slots/{id}/unblock - Slot unblocked: slot=%s, user=%s", slotID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
