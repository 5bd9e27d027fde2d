package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		existing []string
		want     string
	}{
		{
			name:     "picks max plus one regardless of order",
			prefix:   InvoicePrefix,
			existing: []string{"INV-0001", "INV-0003", "INV-0002"},
			want:     "INV-0004",
		},
		{
			name:   "no existing numbers starts at one",
			prefix: InvoicePrefix,
			want:   "INV-0001",
		},
		{
			name:     "malformed number treated as zero",
			prefix:   InvoicePrefix,
			existing: []string{"INV-abc"},
			want:     "INV-0001",
		},
		{
			name:     "foreign prefix ignored",
			prefix:   EstimatePrefix,
			existing: []string{"INV-0009", "EST-0002"},
			want:     "EST-0003",
		},
		{
			name:     "grows past four digits without truncation",
			prefix:   InvoicePrefix,
			existing: []string{"INV-10233"},
			want:     "INV-10234",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextNumber(tc.prefix, tc.existing))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 42, ParseNumber(InvoicePrefix, "INV-0042"))
	assert.Equal(t, 0, ParseNumber(InvoicePrefix, "EST-0042"))
	assert.Equal(t, 0, ParseNumber(InvoicePrefix, "INV-"))
	assert.Equal(t, 0, ParseNumber(InvoicePrefix, "garbage"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-0007", FormatNumber(InvoicePrefix, 7))
	assert.Equal(t, "EST-12345", FormatNumber(EstimatePrefix, 12345))
}
