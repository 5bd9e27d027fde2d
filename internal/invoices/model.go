package invoices

import "time"

type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// transitions is the allowed status graph. Anything absent is rejected.
var transitions = map[Status][]Status{
	StatusDraft:   {StatusSent},
	StatusSent:    {StatusPaid, StatusOverdue},
	StatusOverdue: {StatusPaid},
}

// CanTransition reports whether moving from one status to another is
// allowed.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known invoice status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

type PaymentTerms string

const (
	TermsNet15  PaymentTerms = "net_15"
	TermsNet30  PaymentTerms = "net_30"
	TermsCustom PaymentTerms = "custom"
)

// DueDate derives the due date from the document date for fixed terms.
// Custom terms keep whatever the caller supplied.
func (t PaymentTerms) DueDate(docDate time.Time, custom time.Time) time.Time {
	switch t {
	case TermsNet15:
		return docDate.AddDate(0, 0, 15)
	case TermsNet30:
		return docDate.AddDate(0, 0, 30)
	default:
		return custom
	}
}

// LineItem is one priced row of an invoice. Items belong exclusively to
// their parent document and are stored inline with it.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	GST         bool    `json:"gst"`
	Total       float64 `json:"total"`
}

// Invoice carries a value snapshot of the client taken at creation
// time; editing the client later does not rewrite past invoices.
type Invoice struct {
	ID            int64        `json:"id"`
	Number        string       `json:"number"`
	Date          time.Time    `json:"date"`
	ClientName    string       `json:"client_name"`
	ClientAddress string       `json:"client_address"`
	DueDate       time.Time    `json:"due_date"`
	PaymentTerms  PaymentTerms `json:"payment_terms"`
	LineItems     []LineItem   `json:"line_items"`
	Subtotal      float64      `json:"subtotal"`
	GST           float64      `json:"gst"`
	Total         float64      `json:"total"`
	Status        Status       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
