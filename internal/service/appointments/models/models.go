package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/pkg/ptr"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	UserID uuid.UUID `json:"userId"`
	Reason string    `json:"reason"`
}

// UpdateStatusRequest запрос на смену статуса записи
// Используется клиникой для completed и no_show
type UpdateStatusRequest struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
}

// GetOwnerAppointmentsRequest запрос на получение записей владельца
type GetOwnerAppointmentsRequest struct {
	OwnerID      uuid.UUID `json:"ownerId"`
	Status       *string   `json:"status,omitempty"`
	UpcomingOnly bool      `json:"upcomingOnly,omitempty"`
	Page         int       `json:"page"`
	PageSize     int       `json:"pageSize"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetOwnerAppointmentsRequest) ToDomainFilter() (domain.OwnerAppointmentsFilter, error) {
	filter := domain.OwnerAppointmentsFilter{
		OwnerID:      r.OwnerID,
		UpcomingOnly: r.UpcomingOnly,
		Page:         r.Page,
		PageSize:     r.PageSize,
	}

	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// GetClinicAppointmentsRequest запрос на получение записей клиники
type GetClinicAppointmentsRequest struct {
	UserID          uuid.UUID  `json:"userId"`
	ClinicID        uuid.UUID  `json:"clinicId"`
	VetID           *uuid.UUID `json:"vetId,omitempty"`           // Фильтр по врачу (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить терминальные записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetClinicAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		ClinicID:        r.ClinicID,
		VetID:           r.VetID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// HomeVisitAddress адрес домашнего визита
type HomeVisitAddress struct {
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
	AccessNotes  *string `json:"accessNotes,omitempty"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID               uuid.UUID  `json:"id"`
	ConfirmationCode string     `json:"confirmationCode"`
	ClinicID         uuid.UUID  `json:"clinicId"`
	OwnerID          uuid.UUID  `json:"ownerId"`
	PetID            uuid.UUID  `json:"petId"`
	VetID            *uuid.UUID `json:"vetId,omitempty"`
	ServiceID        int64      `json:"serviceId"`
	SlotID           *uuid.UUID `json:"slotId,omitempty"`

	AppointmentType string `json:"appointmentType"`
	ScheduledDate   string `json:"scheduledDate"` // "2026-09-15"
	ScheduledStart  string `json:"scheduledStart"` // "10:00"
	ScheduledEnd    string `json:"scheduledEnd"`   // "10:30"

	HomeVisit *HomeVisitAddress `json:"homeVisit,omitempty"`

	OwnerNotes  *string `json:"ownerNotes,omitempty"`
	ClinicNotes *string `json:"clinicNotes,omitempty"`

	Status      string `json:"status"`
	IsEmergency bool   `json:"isEmergency"`

	CancelledBy        *uuid.UUID `json:"cancelledBy,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *string    `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
}

// HistoryEntryResponse запись аудита переходов
type HistoryEntryResponse struct {
	ID            int64      `json:"id"`
	AppointmentID uuid.UUID  `json:"appointmentId"`
	PrevStatus    *string    `json:"prevStatus,omitempty"` // null у записи о создании
	NewStatus     string     `json:"newStatus"`
	Actor         string     `json:"actor"`
	ActorID       *uuid.UUID `json:"actorId,omitempty"` // null = системный переход
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// HistoryResponse ответ с историей переходов записи
type HistoryResponse struct {
	AppointmentID uuid.UUID              `json:"appointmentId"`
	Entries       []HistoryEntryResponse `json:"entries"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		ConfirmationCode:   a.ConfirmationCode,
		ClinicID:           a.ClinicID,
		OwnerID:            a.OwnerID,
		PetID:              a.PetID,
		VetID:              a.VetID,
		ServiceID:          a.ServiceID,
		SlotID:             a.SlotID,
		AppointmentType:    string(a.AppointmentType),
		ScheduledDate:      a.ScheduledDate.Format(domain.DateFormat),
		ScheduledStart:     a.ScheduledStart.String(),
		ScheduledEnd:       a.ScheduledEnd.String(),
		OwnerNotes:         a.OwnerNotes,
		ClinicNotes:        a.ClinicNotes,
		Status:             string(a.Status),
		IsEmergency:        a.IsEmergency,
		CancelledBy:        a.CancelledBy,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.IsHomeVisit() && a.HomeAddressLine1 != nil {
		resp.HomeVisit = &HomeVisitAddress{
			AddressLine1: *a.HomeAddressLine1,
			AddressLine2: a.HomeAddressLine2,
			City:         ptr.Deref(a.HomeCity),
			State:        ptr.Deref(a.HomeState),
			PostalCode:   ptr.Deref(a.HomePostalCode),
			AccessNotes:  a.HomeAccessNotes,
		}
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appts []*domain.Appointment, total, page, pageSize int) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appts)),
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}

	for _, a := range appts {
		if apptResp := FromDomainAppointment(a); apptResp != nil {
			resp.Appointments = append(resp.Appointments, *apptResp)
		}
	}

	return resp
}

// FromDomainHistory конвертирует историю переходов в DTO
func FromDomainHistory(appointmentID uuid.UUID, entries []*domain.StatusHistoryEntry) *HistoryResponse {
	resp := &HistoryResponse{
		AppointmentID: appointmentID,
		Entries:       make([]HistoryEntryResponse, 0, len(entries)),
	}

	for _, e := range entries {
		entry := HistoryEntryResponse{
			ID:            e.ID,
			AppointmentID: e.AppointmentID,
			NewStatus:     string(e.NewStatus),
			Actor:         string(e.Actor),
			ActorID:       e.ActorID,
			Reason:        e.Reason,
			CreatedAt:     e.CreatedAt,
		}
		if e.PrevStatus != nil {
			entry.PrevStatus = ptr.Ptr(string(*e.PrevStatus))
		}
		resp.Entries = append(resp.Entries, entry)
	}

	return resp
}
