package estimates

import "time"

type LineItemRequest struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	GST         bool    `json:"gst"`
}

type CreateEstimateRequest struct {
	Date          time.Time         `json:"date" validate:"required"`
	ClientID      *int64            `json:"client_id,omitempty"`
	ClientName    string            `json:"client_name" validate:"required_without=ClientID,max=200"`
	ClientAddress string            `json:"client_address,omitempty"`
	ExpiryDate    time.Time         `json:"expiry_date" validate:"required"`
	LineItems     []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

type UpdateEstimateRequest struct {
	Date          *time.Time         `json:"date,omitempty"`
	ClientName    *string            `json:"client_name,omitempty" validate:"omitempty,max=200"`
	ClientAddress *string            `json:"client_address,omitempty"`
	ExpiryDate    *time.Time         `json:"expiry_date,omitempty"`
	LineItems     *[]LineItemRequest `json:"line_items,omitempty" validate:"omitempty,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

type ListEstimatesRequest struct {
	Status   *Status    `json:"status,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	Limit    int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int        `json:"offset" validate:"gte=0"`
}
