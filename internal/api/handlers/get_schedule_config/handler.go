package get_schedule_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig"
)

const (
	msgInvalidID        = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidServiceID = "некорректный ID услуги"
	msgClinicNotFound   = "клиника не найдена"
	msgAccessDenied     = "список конфигураций доступен только сотрудникам клиники"
)

type Handler struct {
	service ScheduleConfigService
	logger  Logger
}

func NewHandler(service ScheduleConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/clinics/{clinicId}/schedule-config
// Query params: serviceId (optional) - эффективная конфигурация с учётом иерархии;
// all=true - все конфигурации клиники (только для сотрудников)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/schedule-config - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	query := r.URL.Query()

	if query.Get("all") == "true" {
		h.handleList(w, r, clinicID)
		return
	}

	var serviceID *int64
	if serviceIDStr := query.Get("serviceId"); serviceIDStr != "" {
		parsed, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /clinics/{id}/schedule-config - Invalid service ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		serviceID = &parsed
	}

	result, err := h.service.GetEffective(r.Context(), clinicID, serviceID)
	if err != nil {
		h.logger.Error("GET /clinics/{id}/schedule-config - Failed to get config: clinic=%s, error=%v", clinicID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /clinics/{id}/schedule-config - Config retrieved: clinic=%s, default=%t",
		clinicID, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, clinicID uuid.UUID) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("GET /clinics/{id}/schedule-config - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.service.List(r.Context(), clinicID, userID)
	if err != nil {
		switch {
		case errors.Is(err, scheduleconfig.ErrClinicNotFound):
			h.logger.Warn("GET /clinics/{id}/schedule-config - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, scheduleconfig.ErrAccessDenied):
			h.logger.Warn("GET /clinics/{id}/schedule-config - Access denied: clinic=%s, user=%s", clinicID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("GET /clinics/{id}/schedule-config - Failed to list configs: clinic=%s, error=%v",
				clinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clinics/{id}/schedule-config - Configs listed: clinic=%s, count=%d",
		clinicID, len(result.Configs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
