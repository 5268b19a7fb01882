package block_slot

import (
	"errors"
	"io"
	"net/http"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
)

const (
	msgInvalidID          = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSlotNotFound       = "слот не найден"
	msgAccessDenied       = "блокировка слотов доступна только сотрудникам клиники"
	msgSlotHasBookings    = "у слота есть активные записи, укажите cascadeCancel для каскадной отмены"
	msgRetryLater         = "временный конфликт при блокировке, повторите запрос"
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

// Handle PATCH /api/v1/slots/{slotId}/block
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/block - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	slotID, err := handlers.PathUUID(r, "slotId")
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/block - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	// Тело опционально: блокировка без каскадной отмены
	var req BlockSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("PATCH /slots/{id}/block - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Block(r.Context(), slotID, &models.BlockSlotRequest{
		UserID:        userID,
		CascadeCancel: req.CascadeCancel,
		Reason:        req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PATCH /slots/{id}/block - Slot not found: slot=%s", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, slots.ErrAccessDenied):
			h.logger.Warn("PATCH /slots/{id}/block - Access denied: slot=%s, user=%s", slotID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, slots.ErrSlotHasBookings):
			h.logger.Warn("PATCH /slots/{id}/block - Slot has active appointments: slot=%s", slotID)
			handlers.RespondConflict(w, msgSlotHasBookings)

		case errors.Is(err, slots.ErrRetryable):
			h.logger.Warn("PATCH /slots/{id}/block - Transient conflict: slot=%s", slotID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRetryLater)

		default:
			h.logger.Error("PATCH /slots/{id}/block - Failed to block slot: slot=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /slots/{id}/block - Slot blocked: slot=%s, cancelled=%d",
		slotID, result.CancelledAppointments)
	handlers.RespondJSON(w, http.StatusOK, result)
}
