package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	rescheduleAppointment "github.com/findmyvet/FMV-BookingService/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidID           = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgAppointmentNotFound = "запись на приём не найдена"
	msgSlotNotFound        = "целевой слот не найден"
	msgAccessDenied        = "нет доступа к этой записи"
	msgNotActive           = "запись уже отменена или завершена"
	msgSlotConflict        = "целевой слот заполнен или заблокирован"
	msgSlotMismatch        = "целевой слот не подходит для этой записи"
	msgSlotInPast          = "целевой слот уже начался"
	msgSameSlot            = "запись уже назначена на этот слот"
	msgRetryLater          = "временный конфликт при переносе, повторите запрос"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
// Занятие нового слота и освобождение старого атомарны:
// при конфликте на целевом слоте запись остаётся на исходном
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	newSlotID, err := uuid.Parse(req.NewSlotID)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rescheduleAppointment.Request{
		UserID:        userID,
		AppointmentID: appointmentID,
		NewSlotID:     newSlotID,
		Reason:        req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, rescheduleAppointment.ErrSlotNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot not found: slot=%s", newSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, rescheduleAppointment.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Access denied: id=%s, user=%s", appointmentID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, rescheduleAppointment.ErrNotActive):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment not active: id=%s", appointmentID)
			handlers.RespondConflict(w, msgNotActive)

		case errors.Is(err, rescheduleAppointment.ErrSlotConflict):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot conflict: id=%s, slot=%s", appointmentID, newSlotID)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, rescheduleAppointment.ErrSameSlot):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Same slot: id=%s, slot=%s", appointmentID, newSlotID)
			handlers.RespondConflict(w, msgSameSlot)

		case errors.Is(err, rescheduleAppointment.ErrSlotMismatch):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot mismatch: id=%s, slot=%s", appointmentID, newSlotID)
			handlers.RespondBadRequest(w, msgSlotMismatch)

		case errors.Is(err, rescheduleAppointment.ErrSlotInPast):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot in past: slot=%s", newSlotID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, rescheduleAppointment.ErrRetryable):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Transient conflict: id=%s", appointmentID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRetryLater)

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed to reschedule: id=%s, slot=%s, error=%v",
				appointmentID, newSlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment rescheduled: id=%s, slot=%s, date=%s",
		appointmentID, result.SlotID, result.ScheduledDate)
	handlers.RespondJSON(w, http.StatusOK, result)
}
