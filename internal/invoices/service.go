package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerlane/ledgerlane/internal/billing"
	"github.com/ledgerlane/ledgerlane/internal/clients"
)

var (
	ErrInvalidStatus = errors.New("invalid status transition")
	ErrNotEditable   = errors.New("paid invoices cannot be edited")
)

type Service struct {
	repo       Repository
	clientRepo clients.Repository
	validate   *validator.Validate
}

func NewService(repo Repository, clientRepo clients.Repository) *Service {
	return &Service{
		repo:       repo,
		clientRepo: clientRepo,
		validate:   validator.New(),
	}
}

// Create persists a new draft invoice. Totals are always recomputed
// server side from the submitted lines; any client supplied totals are
// ignored. When a client ID is given, name and address are copied by
// value from the client record at this moment.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate invoice: %w", err)
	}

	clientName, clientAddress := req.ClientName, req.ClientAddress
	if req.ClientID != nil {
		c, err := s.clientRepo.Get(ctx, *req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("resolve client: %w", err)
		}
		clientName = c.Name
		clientAddress = c.Address
	}

	terms := req.PaymentTerms
	if terms == "" {
		terms = TermsCustom
	}

	items, totals := buildLineItems(req.LineItems)

	inv := Invoice{
		Date:          req.Date,
		ClientName:    clientName,
		ClientAddress: clientAddress,
		DueDate:       terms.DueDate(req.Date, req.DueDate),
		PaymentTerms:  terms,
		LineItems:     items,
		Subtotal:      totals.Subtotal,
		GST:           totals.Tax,
		Total:         totals.Total,
		Status:        StatusDraft,
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		inv.Number = number

		id, err = repo.Create(ctx, inv)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Update edits an invoice in place, recomputing totals whenever the
// lines change. Paid invoices are final.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate invoice: %w", err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if existing.Status == StatusPaid {
		return nil, ErrNotEditable
	}

	inv := *existing
	if req.Date != nil {
		inv.Date = *req.Date
	}
	if req.ClientName != nil {
		inv.ClientName = *req.ClientName
	}
	if req.ClientAddress != nil {
		inv.ClientAddress = *req.ClientAddress
	}
	if req.PaymentTerms != nil {
		inv.PaymentTerms = *req.PaymentTerms
	}
	if req.DueDate != nil {
		inv.DueDate = *req.DueDate
	}
	if inv.PaymentTerms != TermsCustom {
		inv.DueDate = inv.PaymentTerms.DueDate(inv.Date, inv.DueDate)
	}
	if req.LineItems != nil {
		items, totals := buildLineItems(*req.LineItems)
		inv.LineItems = items
		inv.Subtotal = totals.Subtotal
		inv.GST = totals.Tax
		inv.Total = totals.Total
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Update(ctx, id, inv)
	})
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	return s.repo.Get(ctx, id)
}

// UpdateStatus applies a status transition, rejecting moves outside the
// allowed graph.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to Status) (*Invoice, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, to)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if !CanTransition(existing.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, existing.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("validate list request: %w", err)
	}
	return s.repo.List(ctx, req)
}

// Delete removes an invoice permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// MarkOverdue transitions sent invoices past their due date to overdue.
// Called by the background scan.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.MarkOverdue(ctx, asOf)
}

// TotalsDrift re-derives every invoice's totals from its lines and
// returns the numbers of documents whose stored amounts disagree.
func (s *Service) TotalsDrift(ctx context.Context) ([]string, error) {
	invs, _, err := s.repo.List(ctx, ListInvoicesRequest{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	var drifted []string
	for _, inv := range invs {
		stored := billing.Totals{Subtotal: inv.Subtotal, Tax: inv.GST, Total: inv.Total}
		if !billing.VerifyTotals(billingLines(inv.LineItems), stored) {
			drifted = append(drifted, inv.Number)
		}
	}
	return drifted, nil
}

// buildLineItems assigns IDs to new lines, computes each line total and
// the document aggregate from the same base amounts so the two can
// never drift apart.
func buildLineItems(reqs []LineItemRequest) ([]LineItem, billing.Totals) {
	items := make([]LineItem, 0, len(reqs))
	for _, lr := range reqs {
		id := lr.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, LineItem{
			ID:          id,
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitPrice:   lr.UnitPrice,
			GST:         lr.GST,
			Total:       billing.LineTotal(lr.Quantity, lr.UnitPrice, lr.GST),
		})
	}
	return items, billing.CalculateTotals(billingLines(items))
}

func billingLines(items []LineItem) []billing.Line {
	lines := make([]billing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, billing.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice, GST: it.GST})
	}
	return lines
}
