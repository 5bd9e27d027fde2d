package settings

import "time"

// CompanySettings is a singleton record describing the issuing
// business: identity, bank details and the free-text footer notes
// printed on each document type.
type CompanySettings struct {
	CompanyName     string    `json:"company_name"`
	ABN             string    `json:"abn"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	BankBSB         string    `json:"bank_bsb,omitempty"`
	BankAccount     string    `json:"bank_account,omitempty"`
	BankAccountName string    `json:"bank_account_name,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	InvoiceNotes    string    `json:"invoice_notes,omitempty"`
	EstimateNotes   string    `json:"estimate_notes,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UpsertSettingsRequest struct {
	CompanyName     string `json:"company_name" validate:"required,max=200"`
	ABN             string `json:"abn" validate:"required,max=20"`
	Address         string `json:"address" validate:"required"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	BankBSB         string `json:"bank_bsb,omitempty" validate:"omitempty,max=10"`
	BankAccount     string `json:"bank_account,omitempty" validate:"omitempty,max=20"`
	BankAccountName string `json:"bank_account_name,omitempty" validate:"omitempty,max=200"`
	Notes           string `json:"notes,omitempty"`
	InvoiceNotes    string `json:"invoice_notes,omitempty"`
	EstimateNotes   string `json:"estimate_notes,omitempty"`
}
