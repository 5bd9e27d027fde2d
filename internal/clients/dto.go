package clients

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	ABN     string `json:"abn,omitempty" validate:"omitempty,max=20"`
	Notes   string `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	ABN     *string `json:"abn,omitempty" validate:"omitempty,max=20"`
	Notes   *string `json:"notes,omitempty"`
}

type ListClientsRequest struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
}
