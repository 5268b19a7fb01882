package reschedule_appointment

import (
	"github.com/google/uuid"
)

// Request модель запроса на перенос записи
type Request struct {
	UserID        uuid.UUID // Владелец записи или сотрудник клиники
	AppointmentID uuid.UUID
	NewSlotID     uuid.UUID
	Reason        string
}

// Response модель ответа на перенос записи
type Response struct {
	ID               uuid.UUID  `json:"id"`
	ConfirmationCode string     `json:"confirmationCode"`
	SlotID           uuid.UUID  `json:"slotId"`
	VetID            *uuid.UUID `json:"vetId,omitempty"`
	ScheduledDate    string     `json:"scheduledDate"`  // "2026-09-15"
	ScheduledStart   string     `json:"scheduledStart"` // "10:00"
	ScheduledEnd     string     `json:"scheduledEnd"`   // "10:30"
	Status           string     `json:"status"`
}
