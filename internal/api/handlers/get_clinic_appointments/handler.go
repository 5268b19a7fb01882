package get_clinic_appointments

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
)

const (
	msgInvalidID      = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidVetID   = "некорректный ID врача"
	msgClinicNotFound = "клиника не найдена"
	msgAccessDenied   = "просмотр записей доступен только сотрудникам клиники"
	msgInvalidInput   = "некорректные входные данные"
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

// Handle GET /api/v1/clinics/{clinicId}/appointments
// Query params: vetId, startDate, endDate, status, includeInactive - все опциональны
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/appointments - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/appointments - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	query := r.URL.Query()

	var vetID *uuid.UUID
	if vetIDStr := query.Get("vetId"); vetIDStr != "" {
		parsed, err := uuid.Parse(vetIDStr)
		if err != nil {
			h.logger.Warn("GET /clinics/{id}/appointments - Invalid vet ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidVetID)
			return
		}
		vetID = &parsed
	}

	var startDate, endDate *time.Time
	if startDateStr := query.Get("startDate"); startDateStr != "" {
		parsed, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			h.logger.Warn("GET /clinics/{id}/appointments - Invalid start date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		startDate = &parsed
	}
	if endDateStr := query.Get("endDate"); endDateStr != "" {
		parsed, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			h.logger.Warn("GET /clinics/{id}/appointments - Invalid end date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		endDate = &parsed
	}

	var status *string
	if statusStr := query.Get("status"); statusStr != "" {
		status = &statusStr
	}

	includeInactive := query.Get("includeInactive") == "true"

	result, err := h.service.GetClinicAppointments(r.Context(), &models.GetClinicAppointmentsRequest{
		UserID:          userID,
		ClinicID:        clinicID,
		VetID:           vetID,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          status,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrClinicNotFound):
			h.logger.Warn("GET /clinics/{id}/appointments - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /clinics/{id}/appointments - Access denied: clinic=%s, user=%s", clinicID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /clinics/{id}/appointments - Invalid input: clinic=%s, error=%v", clinicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /clinics/{id}/appointments - Failed to get appointments: clinic=%s, error=%v",
				clinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clinics/{id}/appointments - Appointments retrieved: clinic=%s, count=%d",
		clinicID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
