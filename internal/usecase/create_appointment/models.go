package create_appointment

import (
	"github.com/google/uuid"
)

// HomeVisitAddress адрес домашнего визита
type HomeVisitAddress struct {
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
	AccessNotes  *string `json:"accessNotes,omitempty"`
}

// Request модель запроса на создание записи
// Дата и время приёма берутся из слота, врач - из привязки слота
type Request struct {
	OwnerID   uuid.UUID // Владелец питомца (из аутентификации)
	ClinicID  uuid.UUID
	PetID     uuid.UUID
	ServiceID int64
	SlotID    uuid.UUID

	AppointmentType string            // in_person / home_visit
	HomeVisit       *HomeVisitAddress // Обязателен при home_visit
	OwnerNotes      *string
}

// Response модель ответа на создание записи
type Response struct {
	ID               uuid.UUID  `json:"id"`
	ConfirmationCode string     `json:"confirmationCode"`
	ClinicID         uuid.UUID  `json:"clinicId"`
	OwnerID          uuid.UUID  `json:"ownerId"`
	PetID            uuid.UUID  `json:"petId"`
	VetID            *uuid.UUID `json:"vetId,omitempty"`
	ServiceID        int64      `json:"serviceId"`
	SlotID           uuid.UUID  `json:"slotId"`

	AppointmentType string `json:"appointmentType"`
	ScheduledDate   string `json:"scheduledDate"`  // "2026-09-15"
	ScheduledStart  string `json:"scheduledStart"` // "10:00"
	ScheduledEnd    string `json:"scheduledEnd"`   // "10:30"

	Status      string `json:"status"`
	IsEmergency bool   `json:"isEmergency"`

	// Денормализованные данные для подтверждения
	PetName     string `json:"petName"`
	ServiceName string `json:"serviceName"`
}
