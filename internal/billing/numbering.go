package billing

import (
	"fmt"
	"regexp"
	"strconv"
)

// Document number prefixes.
const (
	InvoicePrefix  = "INV"
	EstimatePrefix = "EST"
)

var numberSuffix = regexp.MustCompile(`^([A-Z]+)-(\d+)$`)

// ParseNumber extracts the integer suffix of a document number such as
// "INV-0042". Numbers that do not match the prefix, or whose suffix is
// not a plain integer, are treated as 0 so a single malformed record
// never blocks number generation.
func ParseNumber(prefix, number string) int {
	m := numberSuffix.FindStringSubmatch(number)
	if m == nil || m[1] != prefix {
		return 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return n
}

// MaxValue returns the highest integer suffix among existing numbers
// for the prefix, or 0 when none parse.
func MaxValue(prefix string, existing []string) int {
	max := 0
	for _, num := range existing {
		if n := ParseNumber(prefix, num); n > max {
			max = n
		}
	}
	return max
}

// NextNumber derives the next sequential document number from the set
// of existing numbers for a document type. With no usable existing
// numbers the sequence starts at 1.
func NextNumber(prefix string, existing []string) string {
	return FormatNumber(prefix, MaxValue(prefix, existing)+1)
}

// FormatNumber renders a document number with the suffix zero padded to
// at least four digits.
func FormatNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}
