package get_user_appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/findmyvet/FMV-BookingService/internal/api/handlers"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

const (
	msgInvalidID     = "некорректный формат идентификатора, ожидается UUID"
	msgAccessDenied  = "нельзя смотреть чужие записи"
	msgInvalidPaging = "некорректные параметры пагинации"
	msgInvalidInput  = "некорректные входные данные"
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

// Handle GET /api/v1/users/{userId}/appointments
// Query params: status (optional), upcomingOnly (optional), page, pageSize
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.UserID(r)
	if err != nil {
		h.logger.Warn("GET /users/{id}/appointments - Invalid user id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	ownerID, err := handlers.PathUUID(r, "userId")
	if err != nil {
		h.logger.Warn("GET /users/{id}/appointments - Invalid owner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	// Владелец видит только собственные записи
	if ownerID != userID {
		h.logger.Warn("GET /users/{id}/appointments - Access denied: owner=%s, user=%s", ownerID, userID)
		handlers.RespondForbidden(w, msgAccessDenied)
		return
	}

	query := r.URL.Query()

	var status *string
	if statusStr := query.Get("status"); statusStr != "" {
		status = &statusStr
	}

	upcomingOnly := query.Get("upcomingOnly") == "true"

	page := defaultPage
	if pageStr := query.Get("page"); pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			h.logger.Warn("GET /users/{id}/appointments - Invalid page: %s", pageStr)
			handlers.RespondBadRequest(w, msgInvalidPaging)
			return
		}
	}

	pageSize := defaultPageSize
	if pageSizeStr := query.Get("pageSize"); pageSizeStr != "" {
		pageSize, err = strconv.Atoi(pageSizeStr)
		if err != nil || pageSize < 1 || pageSize > maxPageSize {
			h.logger.Warn("GET /users/{id}/appointments - Invalid page size: %s", pageSizeStr)
			handlers.RespondBadRequest(w, msgInvalidPaging)
			return
		}
	}

	result, err := h.service.GetOwnerAppointments(r.Context(), &models.GetOwnerAppointmentsRequest{
		OwnerID:      ownerID,
		Status:       status,
		UpcomingOnly: upcomingOnly,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /users/{id}/appointments - Invalid input: owner=%s, error=%v", ownerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /users/{id}/appointments - Failed to get appointments: owner=%s, error=%v", ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/{id}/appointments - Appointments retrieved: owner=%s, total=%d, page=%d",
		ownerID, result.Total, page)
	handlers.RespondJSON(w, http.StatusOK, result)
}
