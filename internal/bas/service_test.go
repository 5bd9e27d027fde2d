package bas

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlane/ledgerlane/internal/invoices"
)

type stubInvoiceRepo struct {
	invoices []invoices.Invoice
}

func (s *stubInvoiceRepo) WithTx(ctx context.Context, fn func(context.Context, invoices.Repository) error) error {
	return fn(ctx, s)
}

func (s *stubInvoiceRepo) Get(ctx context.Context, id int64) (*invoices.Invoice, error) {
	return nil, invoices.ErrNotFound
}

func (s *stubInvoiceRepo) GetByNumber(ctx context.Context, number string) (*invoices.Invoice, error) {
	return nil, invoices.ErrNotFound
}

func (s *stubInvoiceRepo) List(ctx context.Context, req invoices.ListInvoicesRequest) ([]invoices.Invoice, int, error) {
	return s.invoices, len(s.invoices), nil
}

func (s *stubInvoiceRepo) ListForPeriod(ctx context.Context, from, to time.Time, statuses []invoices.Status) ([]invoices.Invoice, error) {
	var out []invoices.Invoice
	for _, inv := range s.invoices {
		if inv.Date.Before(from) || inv.Date.After(to) {
			continue
		}
		for _, st := range statuses {
			if inv.Status == st {
				out = append(out, inv)
				break
			}
		}
	}
	return out, nil
}

func (s *stubInvoiceRepo) Create(ctx context.Context, inv invoices.Invoice) (int64, error) {
	return 0, nil
}

func (s *stubInvoiceRepo) Update(ctx context.Context, id int64, inv invoices.Invoice) error {
	return nil
}

func (s *stubInvoiceRepo) UpdateStatus(ctx context.Context, id int64, status invoices.Status) error {
	return nil
}

func (s *stubInvoiceRepo) Delete(ctx context.Context, id int64) error { return nil }

func (s *stubInvoiceRepo) NextNumber(ctx context.Context) (string, error) { return "", nil }

func (s *stubInvoiceRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return 0, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testInvoice(docDate time.Time, status invoices.Status, subtotal, gst float64) invoices.Invoice {
	return invoices.Invoice{
		Date:     docDate,
		Status:   status,
		Subtotal: subtotal,
		GST:      gst,
		Total:    subtotal + gst,
	}
}

func TestForQuarterSumsSentAndPaidOnly(t *testing.T) {
	repo := &stubInvoiceRepo{invoices: []invoices.Invoice{
		testInvoice(date(2024, 1, 15), invoices.StatusSent, 1000, 100),
		testInvoice(date(2024, 2, 20), invoices.StatusPaid, 500, 50),
		testInvoice(date(2024, 3, 1), invoices.StatusDraft, 9999, 999),
		testInvoice(date(2024, 3, 10), invoices.StatusOverdue, 400, 40),
	}}
	svc := NewService(repo)

	rep, err := svc.ForQuarter(context.Background(), "Q1-2024")
	require.NoError(t, err)

	assert.Equal(t, "Q1-2024", rep.Quarter)
	assert.Equal(t, 2, rep.InvoiceCount)
	assert.InDelta(t, 1500.0, rep.TotalSales, 0.001)
	assert.InDelta(t, 150.0, rep.GSTOnSales, 0.001)
	assert.InDelta(t, 150.0, rep.GSTPayable, 0.001)
}

func TestForQuarterBoundaries(t *testing.T) {
	repo := &stubInvoiceRepo{invoices: []invoices.Invoice{
		testInvoice(date(2024, 1, 1), invoices.StatusSent, 100, 10),
		testInvoice(date(2024, 3, 31), invoices.StatusSent, 200, 20),
		testInvoice(date(2024, 4, 1), invoices.StatusSent, 400, 40),
		testInvoice(date(2023, 12, 31), invoices.StatusSent, 800, 80),
	}}
	svc := NewService(repo)

	rep, err := svc.ForQuarter(context.Background(), "Q1-2024")
	require.NoError(t, err)

	assert.Equal(t, 2, rep.InvoiceCount)
	assert.InDelta(t, 300.0, rep.TotalSales, 0.001)

	rep2, err := svc.ForQuarter(context.Background(), "Q2-2024")
	require.NoError(t, err)
	assert.Equal(t, 1, rep2.InvoiceCount)
	assert.InDelta(t, 400.0, rep2.TotalSales, 0.001)
}

func TestForQuarterInvalidLabel(t *testing.T) {
	svc := NewService(&stubInvoiceRepo{})

	for _, label := range []string{"", "Q5-2024", "2024-Q1", "Q1", "q1-2024"} {
		_, err := svc.ForQuarter(context.Background(), label)
		assert.Error(t, err, "label %q", label)
	}
}

func TestForRangeEmptyPeriod(t *testing.T) {
	repo := &stubInvoiceRepo{invoices: []invoices.Invoice{
		testInvoice(date(2024, 1, 15), invoices.StatusSent, 1000, 100),
	}}
	svc := NewService(repo)

	rep, err := svc.ForRange(context.Background(), date(2025, 1, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.InvoiceCount)
	assert.Zero(t, rep.TotalSales)
	assert.Zero(t, rep.GSTPayable)
}

func TestForRangeInvertedPeriod(t *testing.T) {
	repo := &stubInvoiceRepo{invoices: []invoices.Invoice{
		testInvoice(date(2024, 1, 15), invoices.StatusSent, 1000, 100),
	}}
	svc := NewService(repo)

	rep, err := svc.ForRange(context.Background(), date(2024, 3, 31), date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.InvoiceCount)
	assert.Zero(t, rep.TotalSales)
}
