package estimates

import "time"

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

var transitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusAccepted, StatusRejected, StatusExpired},
}

// CanTransition reports whether moving from one status to another is
// allowed. Accepted, rejected and expired are terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known estimate status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// LineItem is one priced row of an estimate, owned exclusively by its
// parent document.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	GST         bool    `json:"gst"`
	Total       float64 `json:"total"`
}

// Estimate mirrors Invoice apart from the expiry date and status
// vocabulary. The client fields are a value snapshot from creation.
type Estimate struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	Date          time.Time  `json:"date"`
	ClientName    string     `json:"client_name"`
	ClientAddress string     `json:"client_address"`
	ExpiryDate    time.Time  `json:"expiry_date"`
	LineItems     []LineItem `json:"line_items"`
	Subtotal      float64    `json:"subtotal"`
	GST           float64    `json:"gst"`
	Total         float64    `json:"total"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
