package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/domain"
	getAvailableSlots "github.com/findmyvet/FMV-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidClinicID  = "некорректный ID клиники"
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingServiceID = "ID услуги обязателен"
	msgMissingDates     = "параметры startDate и endDate обязательны"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidVetID     = "некорректный ID врача"
	msgClinicNotFound   = "клиника не найдена"
	msgServiceNotFound  = "услуга не найдена"
	msgVetNotFound      = "врач не работает в этой клинике"
	msgInvalidDateRange = "некорректный диапазон дат"
	msgRangeTooWide     = "диапазон дат шире максимально допустимого"
	msgInvalidInput     = "некорректные входные данные"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/clinics/{clinicId}/available-slots
// Query params: serviceId (required), startDate, endDate (required, YYYY-MM-DD),
// slotType (default in_person), vetId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/available-slots - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClinicID)
		return
	}

	query := r.URL.Query()

	serviceIDStr := query.Get("serviceId")
	if serviceIDStr == "" {
		h.logger.Warn("GET /clinics/{id}/available-slots - Missing service ID: clinic=%s", clinicID)
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}

	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/available-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	startDateStr := query.Get("startDate")
	endDateStr := query.Get("endDate")
	if startDateStr == "" || endDateStr == "" {
		h.logger.Warn("GET /clinics/{id}/available-slots - Missing date range: clinic=%s", clinicID)
		handlers.RespondBadRequest(w, msgMissingDates)
		return
	}

	slotType := query.Get("slotType")
	if slotType == "" {
		slotType = string(domain.TypeInPerson)
	}

	vetIDStr := query.Get("vetId")
	if vetIDStr != "" {
		if _, err := uuid.Parse(vetIDStr); err != nil {
			h.logger.Warn("GET /clinics/{id}/available-slots - Invalid vet ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidVetID)
			return
		}
	}

	useCaseReq, err := ToUseCaseRequest(clinicID, serviceID, slotType, vetIDStr, startDateStr, endDateStr)
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/available-slots - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrClinicNotFound):
			h.logger.Warn("GET /clinics/{id}/available-slots - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /clinics/{id}/available-slots - Service not found: clinic=%s, service=%d", clinicID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrVetNotFound):
			h.logger.Warn("GET /clinics/{id}/available-slots - Vet not found: clinic=%s, vet=%s", clinicID, vetIDStr)
			handlers.RespondNotFound(w, msgVetNotFound)

		case errors.Is(err, getAvailableSlots.ErrRangeTooWide):
			h.logger.Warn("GET /clinics/{id}/available-slots - Range too wide: clinic=%s, start=%s, end=%s",
				clinicID, startDateStr, endDateStr)
			handlers.RespondBadRequest(w, msgRangeTooWide)

		case errors.Is(err, getAvailableSlots.ErrInvalidDateRange):
			h.logger.Warn("GET /clinics/{id}/available-slots - Invalid date range: clinic=%s, start=%s, end=%s",
				clinicID, startDateStr, endDateStr)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /clinics/{id}/available-slots - Invalid input: clinic=%s, error=%v", clinicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /clinics/{id}/available-slots - Failed to get slots: clinic=%s, service=%d, error=%v",
				clinicID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clinics/{id}/available-slots - Availability retrieved: clinic=%s, service=%d, days=%d",
		clinicID, serviceID, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, result)
}
