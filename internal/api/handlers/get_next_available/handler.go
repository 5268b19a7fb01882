package get_next_available

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
)

const (
	msgInvalidClinicID  = "некорректный ID клиники"
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingServiceID = "ID услуги обязателен"
	msgInvalidVetID     = "некорректный ID врача"
	msgClinicNotFound   = "клиника не найдена"
	msgNoSlotsAvailable = "открытых слотов нет в ближайшие дни"
	msgInvalidInput     = "некорректные входные данные"
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

// Handle GET /api/v1/clinics/{clinicId}/next-available-slot
// Query params: serviceId (required), slotType (default in_person), vetId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/next-available-slot - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClinicID)
		return
	}

	query := r.URL.Query()

	serviceIDStr := query.Get("serviceId")
	if serviceIDStr == "" {
		h.logger.Warn("GET /clinics/{id}/next-available-slot - Missing service ID: clinic=%s", clinicID)
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}

	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/next-available-slot - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	slotType := query.Get("slotType")
	if slotType == "" {
		slotType = string(domain.TypeInPerson)
	}

	var vetID *uuid.UUID
	if vetIDStr := query.Get("vetId"); vetIDStr != "" {
		parsed, err := uuid.Parse(vetIDStr)
		if err != nil {
			h.logger.Warn("GET /clinics/{id}/next-available-slot - Invalid vet ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidVetID)
			return
		}
		vetID = &parsed
	}

	result, err := h.service.NextAvailable(r.Context(), &models.NextAvailableRequest{
		ClinicID:  clinicID,
		ServiceID: serviceID,
		SlotType:  slotType,
		VetID:     vetID,
	})
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrClinicNotFound):
			h.logger.Warn("GET /clinics/{id}/next-available-slot - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, slots.ErrNoSlotsAvailable):
			h.logger.Info("GET /clinics/{id}/next-available-slot - No open slots: clinic=%s, service=%d", clinicID, serviceID)
			handlers.RespondNotFound(w, msgNoSlotsAvailable)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("GET /clinics/{id}/next-available-slot - Invalid input: clinic=%s, error=%v", clinicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /clinics/{id}/next-available-slot - Failed to find slot: clinic=%s, service=%d, error=%v",
				clinicID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clinics/{id}/next-available-slot - Slot found: clinic=%s, slot=%s, date=%s",
		clinicID, result.ID, result.SlotDate)
	handlers.RespondJSON(w, http.StatusOK, result)
}
