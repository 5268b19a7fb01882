package block_slot

// BlockSlotRequest HTTP request model
// Без cascadeCancel блокировка слота с активными записями отклоняется
type BlockSlotRequest struct {
	CascadeCancel bool   `json:"cascadeCancel,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
