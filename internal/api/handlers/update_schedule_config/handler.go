package update_schedule_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig"
	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig/models"
)

const (
	msgInvalidID          = "некорректный формат идентификатора, ожидается UUID"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgClinicNotFound     = "клиника не найдена"
	msgConfigNotFound     = "конфигурация расписания не найдена"
	msgAccessDenied       = "управление конфигурацией доступно только сотрудникам клиники"
	msgInvalidInput       = "некорректные значения конфигурации"
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

// Handle PUT /api/v1/clinics/{clinicId}/schedule-config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("PUT /clinics/{id}/schedule-config - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("PUT /clinics/{id}/schedule-config - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req UpsertConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /clinics/{id}/schedule-config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Upsert(r.Context(), &models.UpsertConfigRequest{
		UserID:             userID,
		ClinicID:           clinicID,
		ServiceID:          req.ServiceID,
		SlotCapacity:       req.SlotCapacity,
		LeadTimeMinutes:    req.LeadTimeMinutes,
		AdvanceBookingDays: req.AdvanceBookingDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleconfig.ErrClinicNotFound):
			h.logger.Warn("PUT /clinics/{id}/schedule-config - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, scheduleconfig.ErrAccessDenied):
			h.logger.Warn("PUT /clinics/{id}/schedule-config - Access denied: clinic=%s, user=%s", clinicID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, scheduleconfig.ErrInvalidInput):
			h.logger.Warn("PUT /clinics/{id}/schedule-config - Invalid input: clinic=%s, error=%v", clinicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /clinics/{id}/schedule-config - Failed to upsert config: clinic=%s, error=%v",
				clinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /clinics/{id}/schedule-config - Config upserted: clinic=%s, config_id=%d",
		clinicID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDelete DELETE /api/v1/clinics/{clinicId}/schedule-config
// Query params: serviceId (optional) - без него удаляется конфигурация уровня клиники
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("DELETE /clinics/{id}/schedule-config - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	clinicID, err := handlers.PathUUID(r, "clinicId")
	if err != nil {
		h.logger.Warn("DELETE /clinics/{id}/schedule-config - Invalid clinic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var serviceID *int64
	if serviceIDStr := r.URL.Query().Get("serviceId"); serviceIDStr != "" {
		parsed, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("DELETE /clinics/{id}/schedule-config - Invalid service ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		serviceID = &parsed
	}

	err = h.service.Delete(r.Context(), &models.DeleteConfigRequest{
		UserID:    userID,
		ClinicID:  clinicID,
		ServiceID: serviceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleconfig.ErrConfigNotFound):
			h.logger.Warn("DELETE /clinics/{id}/schedule-config - Config not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, scheduleconfig.ErrClinicNotFound):
			h.logger.Warn("DELETE /clinics/{id}/schedule-config - Clinic not found: clinic=%s", clinicID)
			handlers.RespondNotFound(w, msgClinicNotFound)

		case errors.Is(err, scheduleconfig.ErrAccessDenied):
			h.logger.Warn("DELETE /clinics/{id}/schedule-config - Access denied: clinic=%s, user=%s", clinicID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("DELETE /clinics/{id}/schedule-config - Failed to delete config: clinic=%s, error=%v",
				clinicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /clinics/{id}/schedule-config - Config deleted: clinic=%s, user=%s", clinicID, userID)
	w.WriteHeader(http.StatusNoContent)
}
