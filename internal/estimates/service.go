package estimates

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
	ErrNotEditable   = errors.New("only draft and sent estimates can be edited")
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

// Create persists a new draft estimate with server-computed totals.
func (s *Service) Create(ctx context.Context, req CreateEstimateRequest) (*Estimate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate estimate: %w", err)
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

	items, totals := buildLineItems(req.LineItems)

	est := Estimate{
		Date:          req.Date,
		ClientName:    clientName,
		ClientAddress: clientAddress,
		ExpiryDate:    req.ExpiryDate,
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
			return fmt.Errorf("allocate estimate number: %w", err)
		}
		est.Number = number

		id, err = repo.Create(ctx, est)
		if err != nil {
			return fmt.Errorf("create estimate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Update edits an estimate, recomputing totals whenever lines change.
// Once an estimate reaches a terminal status it is read only.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEstimateRequest) (*Estimate, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate estimate: %w", err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	if existing.Status != StatusDraft && existing.Status != StatusSent {
		return nil, ErrNotEditable
	}

	est := *existing
	if req.Date != nil {
		est.Date = *req.Date
	}
	if req.ClientName != nil {
		est.ClientName = *req.ClientName
	}
	if req.ClientAddress != nil {
		est.ClientAddress = *req.ClientAddress
	}
	if req.ExpiryDate != nil {
		est.ExpiryDate = *req.ExpiryDate
	}
	if req.LineItems != nil {
		items, totals := buildLineItems(*req.LineItems)
		est.LineItems = items
		est.Subtotal = totals.Subtotal
		est.GST = totals.Tax
		est.Total = totals.Total
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Update(ctx, id, est)
	})
	if err != nil {
		return nil, fmt.Errorf("update estimate: %w", err)
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, to Status) (*Estimate, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, to)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	if !CanTransition(existing.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, existing.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Estimate, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("validate list request: %w", err)
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// MarkExpired transitions sent estimates past their expiry date.
// Called by the background scan.
func (s *Service) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.MarkExpired(ctx, asOf)
}

// TotalsDrift re-derives stored totals and returns the numbers of
// estimates whose stored amounts disagree with their lines.
func (s *Service) TotalsDrift(ctx context.Context) ([]string, error) {
	ests, _, err := s.repo.List(ctx, ListEstimatesRequest{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}

	var drifted []string
	for _, est := range ests {
		stored := billing.Totals{Subtotal: est.Subtotal, Tax: est.GST, Total: est.Total}
		if !billing.VerifyTotals(billingLines(est.LineItems), stored) {
			drifted = append(drifted, est.Number)
		}
	}
	return drifted, nil
}

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
