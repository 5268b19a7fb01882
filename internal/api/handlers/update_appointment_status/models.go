package update_appointment_status

// UpdateStatusRequest HTTP request model
// Допустимые целевые статусы: completed, no_show
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
