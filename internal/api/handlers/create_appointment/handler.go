package create_appointment

import (
	"errors"
	"net/http"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	createAppointment "github.com/findmyvet/FMV-BookingService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidID            = "некорректный формат идентификатора, ожидается UUID"
	msgClinicNotFound       = "клиника не найдена"
	msgServiceNotFound      = "услуга не найдена"
	msgPetNotFound          = "питомец не найден"
	msgSlotNotFound         = "слот не найден"
	msgAccessDenied         = "питомец принадлежит другому владельцу"
	msgSlotConflict         = "выбранный слот заполнен или заблокирован"
	msgSlotMismatch         = "слот не подходит для выбранной клиники, услуги или типа приёма"
	msgSlotInPast           = "слот уже начался, запись невозможна"
	msgHomeVisitsNotOffered = "клиника не проводит домашние визиты"
	msgInvalidInput         = "некорректные входные данные"
	msgRetryLater           = "временный конфликт при бронировании, повторите запрос"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(ownerID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotConflict):
			h.logger.Warn("POST /appointments - Slot conflict: owner=%s, slot=%s", ownerID, req.SlotID)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createAppointment.ErrRetryable):
			h.logger.Warn("POST /appointments - Transient conflict: owner=%s, slot=%s", ownerID, req.SlotID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRetryLater)

		case errors.Is(err, createAppointment.ErrClinicNotFound):
			h.logger.Warn("POST /appointments - Clinic not found: clinic=%s", req.ClinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: clinic=%s, service=%d", req.ClinicID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrPetNotFound):
			h.logger.Warn("POST /appointments - Pet not found: pet=%s", req.PetID)
			handlers.RespondNotFound(w, msgPetNotFound)

		case errors.Is(err, createAppointment.ErrSlotNotFound):
			h.logger.Warn("POST /appointments - Slot not found: slot=%s", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createAppointment.ErrAccessDenied):
			h.logger.Warn("POST /appointments - Access denied: owner=%s, pet=%s", ownerID, req.PetID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, createAppointment.ErrSlotMismatch):
			h.logger.Warn("POST /appointments - Slot mismatch: slot=%s, clinic=%s", req.SlotID, req.ClinicID)
			handlers.RespondBadRequest(w, msgSlotMismatch)

		case errors.Is(err, createAppointment.ErrSlotInPast):
			h.logger.Warn("POST /appointments - Slot in past: slot=%s", req.SlotID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, createAppointment.ErrHomeVisitsNotOffered):
			h.logger.Warn("POST /appointments - Home visits not offered: clinic=%s", req.ClinicID)
			handlers.RespondBadRequest(w, msgHomeVisitsNotOffered)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: owner=%s, error=%v", ownerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: owner=%s, slot=%s, error=%v",
				ownerID, req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: id=%s, code=%s, owner=%s",
		result.ID, result.ConfirmationCode, ownerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
