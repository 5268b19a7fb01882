package generate_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	generateSlots "github.com/findmyvet/FMV-BookingService/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model
// Перегенерация идемпотентна: пустые слоты диапазона пересоздаются,
// занятые и заблокированные остаются нетронутыми
type GenerateSlotsRequest struct {
	ServiceID *int64  `json:"serviceId,omitempty"`
	VetID     *string `json:"vetId,omitempty"`
	SlotType  string  `json:"slotType,omitempty"` // default in_person
	StartDate string  `json:"startDate"`          // "2026-09-15"
	EndDate   string  `json:"endDate"`            // "2026-09-28"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest(userID, clinicID uuid.UUID) (*generateSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	var vetID *uuid.UUID
	if r.VetID != nil {
		parsed, err := uuid.Parse(*r.VetID)
		if err != nil {
			return nil, err
		}
		vetID = &parsed
	}

	slotType := r.SlotType
	if slotType == "" {
		slotType = string(domain.TypeInPerson)
	}

	return &generateSlots.Request{
		UserID:    userID,
		ClinicID:  clinicID,
		ServiceID: r.ServiceID,
		VetID:     vetID,
		SlotType:  slotType,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}
