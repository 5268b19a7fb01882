package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
)

// Request модели

// BlockSlotRequest запрос на блокировку слота
// CascadeCancel = true разрешает каскадную отмену активных записей слота;
// без него блокировка слота с записями отклоняется
type BlockSlotRequest struct {
	UserID        uuid.UUID `json:"userId"`
	CascadeCancel bool      `json:"cascadeCancel,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// UnblockSlotRequest запрос на снятие блокировки слота
type UnblockSlotRequest struct {
	UserID uuid.UUID `json:"userId"`
}

// NextAvailableRequest запрос на поиск ближайшего открытого слота
type NextAvailableRequest struct {
	ClinicID  uuid.UUID  `json:"clinicId"`
	ServiceID int64      `json:"serviceId"`
	SlotType  string     `json:"slotType"`
	VetID     *uuid.UUID `json:"vetId,omitempty"`
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClinicID  uuid.UUID  `json:"clinicId"`
	VetID     *uuid.UUID `json:"vetId,omitempty"`
	ServiceID *int64     `json:"serviceId,omitempty"`

	SlotDate  string `json:"slotDate"`  // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "10:30"
	SlotType  string `json:"slotType"`

	Capacity    int  `json:"capacity"`
	BookedCount int  `json:"bookedCount"`
	Remaining   int  `json:"remaining"`
	Blocked     bool `json:"blocked"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BlockSlotResponse ответ на блокировку слота
type BlockSlotResponse struct {
	Slot                  SlotResponse `json:"slot"`
	CancelledAppointments int          `json:"cancelledAppointments"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:          s.ID,
		ClinicID:    s.ClinicID,
		VetID:       s.VetID,
		ServiceID:   s.ServiceID,
		SlotDate:    s.SlotDate.Format(domain.DateFormat),
		StartTime:   s.StartTime.String(),
		EndTime:     s.EndTime.String(),
		SlotType:    string(s.SlotType),
		Capacity:    s.Capacity,
		BookedCount: s.BookedCount,
		Remaining:   s.Remaining(),
		Blocked:     s.Blocked,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
