package generate_slots

import (
	"errors"
	"net/http"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	generateSlots "github.com/findmyvet/FMV-BookingService/internal/usecase/generate_slots"
)

const (
	msgInvalidID            = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgClinicNotFound       = "клиника не найдена"
	msgServiceNotFound      = "услуга не найдена"
	msgVetNotFound          = "врач не работает в этой клинике"
	msgAccessDenied         = "генерация слотов доступна только сотрудникам клиники"
	msgHomeVisitsNotOffered = "клиника не проводит домашние визиты"
	msgInvalidDateRange     = "некорректный диапазон дат"
	msgDateTooFar           = "диапазон выходит за горизонт бронирования"
	msgInvalidInput         = "некорректные входные данные"
)

type Handler struct {
	useCase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/clinics/{clinicId}/slots/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("POST /clinics/{id}/slots/generate - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("POST /clinics/{id}/slots/generate - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /clinics/{id}/slots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID, clinicID)
	if err != nil {
		h.logger.Warn("POST /clinics/{id}/slots/generate - Failed to parse request: %v", err)
		if req.VetID != nil {
			handlers.RespondBadRequest(w, msgInvalidID)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrClinicNotFound):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, generateSlots.ErrServiceNotFound):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Service not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, generateSlots.ErrVetNotFound):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Vet not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgVetNotFound)

		case errors.Is(err, generateSlots.ErrAccessDenied):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Access denied: clinic=%s, user=%s", clinicID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, generateSlots.ErrHomeVisitsNotOffered):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Home visits not offered: clinic=%s", clinicID)
			handlers.RespondBadRequest(w, msgHomeVisitsNotOffered)

		case errors.Is(err, generateSlots.ErrInvalidDateRange):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Invalid date range: clinic=%s, start=%s, end=%s",
				clinicID, req.StartDate, req.EndDate)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, generateSlots.ErrDateTooFarInFuture):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Date too far: clinic=%s, end=%s", clinicID, req.EndDate)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /clinics/{id}/slots/generate - Invalid input: clinic=%s, error=%v", clinicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /clinics/{id}/slots/generate - Failed to generate slots: clinic=%s, error=%v",
				clinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /clinics/{id}/slots/generate - Slots generated: clinic=%s, created=%d, removed=%d",
		clinicID, result.SlotsCreated, result.SlotsRemoved)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
