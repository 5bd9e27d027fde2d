// Package billing holds the pure financial computations shared by the
// invoice and estimate services: line pricing, GST summation, document
// numbering and reporting periods. Nothing in this package touches the
// database or the clock.
package billing

// GSTRate is the flat Australian goods-and-services tax rate applied to
// GST-flagged lines.
const GSTRate = 0.1

// Line is the minimal shape the calculators need. Both invoice and
// estimate line items satisfy it by value.
type Line struct {
	Quantity  float64
	UnitPrice float64
	GST       bool
}

// Totals aggregates a document's derived amounts.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// LineTotal computes a single line's total. GST-flagged lines carry the
// full 10% on top of quantity times unit price. Zero-valued quantity or
// price contributes zero, never an error.
func LineTotal(quantity, unitPrice float64, gst bool) float64 {
	base := quantity * unitPrice
	if gst {
		return base * (1 + GSTRate)
	}
	return base
}

// CalculateTotals reduces a line sequence into subtotal, tax and total.
// Subtotal covers every line; tax accumulates only from GST-flagged
// lines. Total is subtotal plus tax, which equals the sum of LineTotal
// over the same lines because LineTotal applies the identical rate to
// the identical base.
func CalculateTotals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		base := l.Quantity * l.UnitPrice
		t.Subtotal += base
		if l.GST {
			t.Tax += base * GSTRate
		}
	}
	t.Total = t.Subtotal + t.Tax
	return t
}

// VerifyTotals re-derives totals from lines and reports whether the
// stored amounts match within tolerance. Stored totals come back from
// the database as numeric columns, so an exact float comparison would
// flag harmless representation noise.
func VerifyTotals(lines []Line, stored Totals) bool {
	derived := CalculateTotals(lines)
	return withinTolerance(derived.Subtotal, stored.Subtotal) &&
		withinTolerance(derived.Tax, stored.Tax) &&
		withinTolerance(derived.Total, stored.Total)
}

const driftTolerance = 0.005

func withinTolerance(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= driftTolerance
}
