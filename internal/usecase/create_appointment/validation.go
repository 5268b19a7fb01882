package create_appointment

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: ownerID is required", ErrInvalidInput)
	}
	if req.ClinicID == uuid.Nil {
		return fmt.Errorf("%w: clinicID is required", ErrInvalidInput)
	}
	if req.PetID == uuid.Nil {
		return fmt.Errorf("%w: petID is required", ErrInvalidInput)
	}
	if req.SlotID == uuid.Nil {
		return fmt.Errorf("%w: slotID is required", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.OwnerNotes != nil && len(*req.OwnerNotes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: ownerNotes exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	apptType, err := domain.ParseAppointmentType(req.AppointmentType)
	if err != nil {
		return fmt.Errorf("%w: invalid appointment type", ErrInvalidInput)
	}

	if apptType == domain.TypeHomeVisit {
		return validateHomeVisit(req.HomeVisit)
	}

	return nil
}

// validateHomeVisit проверяет обязательные поля адреса домашнего визита
func validateHomeVisit(addr *HomeVisitAddress) error {
	if addr == nil {
		return fmt.Errorf("%w: home visit address is required", ErrInvalidInput)
	}

	if addr.AddressLine1 == "" {
		return fmt.Errorf("%w: addressLine1 is required for home visit", ErrInvalidInput)
	}
	if addr.City == "" {
		return fmt.Errorf("%w: city is required for home visit", ErrInvalidInput)
	}
	if addr.State == "" {
		return fmt.Errorf("%w: state is required for home visit", ErrInvalidInput)
	}
	if addr.PostalCode == "" {
		return fmt.Errorf("%w: postalCode is required for home visit", ErrInvalidInput)
	}

	if len(addr.AddressLine1) > domain.MaxAddressLineLength {
		return fmt.Errorf("%w: addressLine1 exceeds %d characters", ErrInvalidInput, domain.MaxAddressLineLength)
	}
	if addr.AddressLine2 != nil && len(*addr.AddressLine2) > domain.MaxAddressLineLength {
		return fmt.Errorf("%w: addressLine2 exceeds %d characters", ErrInvalidInput, domain.MaxAddressLineLength)
	}
	if len(addr.City) > domain.MaxCityLength {
		return fmt.Errorf("%w: city exceeds %d characters", ErrInvalidInput, domain.MaxCityLength)
	}
	if len(addr.State) > domain.MaxStateLength {
		return fmt.Errorf("%w: state exceeds %d characters", ErrInvalidInput, domain.MaxStateLength)
	}
	if len(addr.PostalCode) > domain.MaxPostalCodeLength {
		return fmt.Errorf("%w: postalCode exceeds %d characters", ErrInvalidInput, domain.MaxPostalCodeLength)
	}
	if addr.AccessNotes != nil && len(*addr.AccessNotes) > domain.MaxAccessNotesLength {
		return fmt.Errorf("%w: accessNotes exceeds %d characters", ErrInvalidInput, domain.MaxAccessNotesLength)
	}

	return nil
}
