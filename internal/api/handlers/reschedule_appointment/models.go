package reschedule_appointment

// RescheduleAppointmentRequest HTTP request model
// Дата и время приёма берутся из нового слота
type RescheduleAppointmentRequest struct {
	NewSlotID string `json:"newSlotId"`
	Reason    string `json:"reason,omitempty"`
}
