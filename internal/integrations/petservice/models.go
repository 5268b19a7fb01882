package petservice

import "github.com/google/uuid"

// Pet модель питомца из PetService
type Pet struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	BreedName *string   `json:"breed_name,omitempty"`
}

// ErrorResponse модель ошибки от PetService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
