package update_schedule_config

// UpsertConfigRequest HTTP request model
// serviceId = null задает конфигурацию уровня клиники
type UpsertConfigRequest struct {
	ServiceID          *int64 `json:"serviceId,omitempty"`
	SlotCapacity       int    `json:"slotCapacity"`
	LeadTimeMinutes    int    `json:"leadTimeMinutes"`
	AdvanceBookingDays int    `json:"advanceBookingDays"`
}
