package create_appointment

import (
	"github.com/google/uuid"

	createAppointment "github.com/findmyvet/FMV-BookingService/internal/usecase/create_appointment"
)

// HomeVisitAddress адрес домашнего визита в HTTP запросе
type HomeVisitAddress struct {
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
	AccessNotes  *string `json:"accessNotes,omitempty"`
}

// CreateAppointmentRequest HTTP request model
// Владелец берётся из заголовка X-User-ID, не из тела
type CreateAppointmentRequest struct {
	ClinicID        string            `json:"clinicId"`
	PetID           string            `json:"petId"`
	ServiceID       int64             `json:"serviceId"`
	SlotID          string            `json:"slotId"`
	AppointmentType string            `json:"appointmentType"`
	HomeVisit       *HomeVisitAddress `json:"homeVisit,omitempty"`
	OwnerNotes      *string           `json:"ownerNotes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(ownerID uuid.UUID) (*createAppointment.Request, error) {
	clinicID, err := uuid.Parse(r.ClinicID)
	if err != nil {
		return nil, err
	}

	petID, err := uuid.Parse(r.PetID)
	if err != nil {
		return nil, err
	}

	slotID, err := uuid.Parse(r.SlotID)
	if err != nil {
		return nil, err
	}

	req := &createAppointment.Request{
		OwnerID:         ownerID,
		ClinicID:        clinicID,
		PetID:           petID,
		ServiceID:       r.ServiceID,
		SlotID:          slotID,
		AppointmentType: r.AppointmentType,
		OwnerNotes:      r.OwnerNotes,
	}

	if r.HomeVisit != nil {
		req.HomeVisit = &createAppointment.HomeVisitAddress{
			AddressLine1: r.HomeVisit.AddressLine1,
			AddressLine2: r.HomeVisit.AddressLine2,
			City:         r.HomeVisit.City,
			State:        r.HomeVisit.State,
			PostalCode:   r.HomeVisit.PostalCode,
			AccessNotes:  r.HomeVisit.AccessNotes,
		}
	}

	return req, nil
}
