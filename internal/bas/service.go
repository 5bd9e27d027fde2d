package bas

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ledgerlane/ledgerlane/internal/billing"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
)

// Report summarises GST activity for a reporting period. GST payable
// equals GST collected on sales because purchase credits are tracked
// outside this system.
type Report struct {
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	Quarter      string    `json:"quarter,omitempty"`
	TotalSales   float64   `json:"total_sales"`
	GSTOnSales   float64   `json:"gst_on_sales"`
	GSTPayable   float64   `json:"gst_payable"`
	InvoiceCount int       `json:"invoice_count"`
}

// reportStatuses are the invoice statuses that count as business
// activity. Drafts have not been issued and are excluded; overdue
// invoices were issued but remain unpaid, so they are excluded too,
// matching cash-basis reporting.
var reportStatuses = []invoices.Status{invoices.StatusSent, invoices.StatusPaid}

type Service struct {
	repo  invoices.Repository
	group singleflight.Group
}

func NewService(repo invoices.Repository) *Service {
	return &Service{repo: repo}
}

// ForQuarter builds the report for a quarter label such as "Q1-2024".
// Concurrent requests for the same quarter share a single database
// pass.
func (s *Service) ForQuarter(ctx context.Context, quarter string) (*Report, error) {
	start, end, err := billing.QuarterRange(quarter)
	if err != nil {
		return nil, fmt.Errorf("parse quarter: %w", err)
	}

	v, err, _ := s.group.Do(quarter, func() (interface{}, error) {
		return s.build(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}

	// Copy before labelling: coalesced callers share the pointer.
	report := *v.(*Report)
	report.Quarter = quarter
	return &report, nil
}

// ForRange builds the report for an explicit inclusive date range. An
// inverted range yields an empty report rather than an error.
func (s *Service) ForRange(ctx context.Context, from, to time.Time) (*Report, error) {
	return s.build(ctx, from, to)
}

func (s *Service) build(ctx context.Context, from, to time.Time) (*Report, error) {
	report := &Report{PeriodStart: from, PeriodEnd: to}
	if to.Before(from) {
		return report, nil
	}

	invs, err := s.repo.ListForPeriod(ctx, from, to, reportStatuses)
	if err != nil {
		return nil, fmt.Errorf("list invoices for period: %w", err)
	}

	for _, inv := range invs {
		report.TotalSales += inv.Subtotal
		report.GSTOnSales += inv.GST
	}
	report.GSTPayable = report.GSTOnSales
	report.InvoiceCount = len(invs)
	return report, nil
}
