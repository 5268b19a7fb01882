package cancel_appointment

// CancelAppointmentRequest HTTP request model
// Инициатор берётся из заголовка X-User-ID
type CancelAppointmentRequest struct {
	Reason string `json:"reason,omitempty"`
}
