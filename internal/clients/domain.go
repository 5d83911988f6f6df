package clients

import "time"

// Client is a dealership customer. Phone and CPF are stored digits-only;
// masking happens at display time.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CPF       *string   `json:"cpf,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateClientRequest is the payload for client creation.
type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=140"`
	Phone   string  `json:"phone" validate:"required"`
	CPF     *string `json:"cpf,omitempty"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Notes   *string `json:"notes,omitempty"`
}

// UpdateClientRequest is the payload for client updates; nil fields are
// left untouched.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=140"`
	Phone   *string `json:"phone,omitempty"`
	CPF     *string `json:"cpf,omitempty"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Notes   *string `json:"notes,omitempty"`
}

// ListClientsRequest carries listing filters.
type ListClientsRequest struct {
	Search string
	Limit  int
	Offset int
}
