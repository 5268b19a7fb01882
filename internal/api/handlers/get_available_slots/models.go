package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	getAvailableSlots "github.com/findmyvet/FMV-BookingService/internal/usecase/get_available_slots"
)

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(clinicID uuid.UUID, serviceID int64, slotType, vetIDStr, startDateStr, endDateStr string) (*getAvailableSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, startDateStr)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, endDateStr)
	if err != nil {
		return nil, err
	}

	var vetID *uuid.UUID
	if vetIDStr != "" {
		parsed, err := uuid.Parse(vetIDStr)
		if err != nil {
			return nil, err
		}
		vetID = &parsed
	}

	return &getAvailableSlots.Request{
		ClinicID:  clinicID,
		ServiceID: serviceID,
		SlotType:  slotType,
		VetID:     vetID,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}
