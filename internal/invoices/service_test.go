package invoices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlane/ledgerlane/internal/billing"
	"github.com/ledgerlane/ledgerlane/internal/clients"
)

type mockRepository struct {
	invoices map[int64]*Invoice
	nextID   int64
	seq      int
}

func newMockRepository() *mockRepository {
	return &mockRepository{invoices: make(map[int64]*Invoice), nextID: 1}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	for _, inv := range m.invoices {
		if inv.Number == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if req.Status != nil && inv.Status != *req.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (m *mockRepository) ListForPeriod(ctx context.Context, from, to time.Time, statuses []Status) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.Date.Before(from) || inv.Date.After(to) {
			continue
		}
		for _, s := range statuses {
			if inv.Status == s {
				out = append(out, *inv)
				break
			}
		}
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, inv Invoice) (int64, error) {
	id := m.nextID
	m.nextID++
	inv.ID = id
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.invoices[id] = &inv
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, inv Invoice) error {
	existing, ok := m.invoices[id]
	if !ok {
		return ErrNotFound
	}
	inv.ID = id
	inv.Number = existing.Number
	inv.Status = existing.Status
	m.invoices[id] = &inv
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	inv, ok := m.invoices[id]
	if !ok {
		return ErrNotFound
	}
	inv.Status = status
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

func (m *mockRepository) NextNumber(ctx context.Context) (string, error) {
	if m.seq == 0 {
		var numbers []string
		for _, inv := range m.invoices {
			numbers = append(numbers, inv.Number)
		}
		m.seq = billing.MaxValue(billing.InvoicePrefix, numbers)
	}
	m.seq++
	return billing.FormatNumber(billing.InvoicePrefix, m.seq), nil
}

func (m *mockRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var n int64
	for _, inv := range m.invoices {
		if inv.Status == StatusSent && inv.DueDate.Before(asOf) {
			inv.Status = StatusOverdue
			n++
		}
	}
	return n, nil
}

type stubClientRepo struct {
	clients map[int64]*clients.Client
}

func (s *stubClientRepo) Get(ctx context.Context, id int64) (*clients.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, clients.ErrNotFound
	}
	return c, nil
}

func (s *stubClientRepo) List(ctx context.Context, req clients.ListClientsRequest) ([]clients.Client, int, error) {
	return nil, 0, nil
}

func (s *stubClientRepo) Create(ctx context.Context, c clients.Client) (int64, error) {
	return 0, nil
}

func (s *stubClientRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

func (s *stubClientRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	clientRepo := &stubClientRepo{clients: map[int64]*clients.Client{
		7: {ID: 7, Name: "Acme Widgets Pty Ltd", Address: "1 Factory Rd, Melbourne VIC 3000"},
	}}
	return NewService(repo, clientRepo), repo
}

func testDate() time.Time {
	return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
}

func TestServiceCreateComputesTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
		LineItems: []LineItemRequest{
			{Description: "Consulting", Quantity: 10, UnitPrice: 150, GST: true},
			{Description: "Travel", Quantity: 1, UnitPrice: 200, GST: false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", inv.Number)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.InDelta(t, 1700.0, inv.Subtotal, 0.001)
	assert.InDelta(t, 150.0, inv.GST, 0.001)
	assert.InDelta(t, 1850.0, inv.Total, 0.001)
	require.Len(t, inv.LineItems, 2)
	assert.InDelta(t, 1650.0, inv.LineItems[0].Total, 0.001)
	assert.InDelta(t, 200.0, inv.LineItems[1].Total, 0.001)
	assert.NotEmpty(t, inv.LineItems[0].ID)
}

func TestServiceCreateSnapshotsClient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	clientID := int64(7)

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:     testDate(),
		ClientID: &clientID,
		LineItems: []LineItemRequest{
			{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Widgets Pty Ltd", inv.ClientName)
	assert.Equal(t, "1 Factory Rd, Melbourne VIC 3000", inv.ClientAddress)
}

func TestServiceCreateUnknownClient(t *testing.T) {
	svc, _ := newTestService()
	clientID := int64(99)

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		Date:     testDate(),
		ClientID: &clientID,
		LineItems: []LineItemRequest{
			{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, clients.ErrNotFound)
}

func TestServiceCreateDerivesDueDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:         testDate(),
		ClientName:   "Blue Gum Cafe",
		PaymentTerms: TermsNet30,
		LineItems: []LineItemRequest{
			{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, testDate().AddDate(0, 0, 30), inv.DueDate)
}

func TestServiceCreateNumbersAreSequential(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
		LineItems:  []LineItemRequest{{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true}},
	}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	second, err := svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", first.Number)
	assert.Equal(t, "INV-0002", second.Number)
}

func TestServiceCreateRejectsEmptyLines(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
	})
	require.Error(t, err)
}

func TestServiceUpdateRecomputesTotalsOnLineChange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
		LineItems:  []LineItemRequest{{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true}},
	})
	require.NoError(t, err)

	newLines := []LineItemRequest{
		{Description: "Revised work", Quantity: 2, UnitPrice: 300, GST: true},
	}
	updated, err := svc.Update(ctx, inv.ID, UpdateInvoiceRequest{LineItems: &newLines})
	require.NoError(t, err)

	assert.InDelta(t, 600.0, updated.Subtotal, 0.001)
	assert.InDelta(t, 60.0, updated.GST, 0.001)
	assert.InDelta(t, 660.0, updated.Total, 0.001)
}

func TestServiceUpdateRejectsPaid(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
		LineItems:  []LineItemRequest{{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true}},
	})
	require.NoError(t, err)
	repo.invoices[inv.ID].Status = StatusPaid

	name := "Someone Else"
	_, err = svc.Update(ctx, inv.ID, UpdateInvoiceRequest{ClientName: &name})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestServiceStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"draft to sent", StatusDraft, StatusSent, true},
		{"sent to paid", StatusSent, StatusPaid, true},
		{"sent to overdue", StatusSent, StatusOverdue, true},
		{"overdue to paid", StatusOverdue, StatusPaid, true},
		{"draft to paid", StatusDraft, StatusPaid, false},
		{"paid to draft", StatusPaid, StatusDraft, false},
		{"paid to sent", StatusPaid, StatusSent, false},
		{"overdue to draft", StatusOverdue, StatusDraft, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newTestService()
			ctx := context.Background()

			inv, err := svc.Create(ctx, CreateInvoiceRequest{
				Date:       testDate(),
				ClientName: "Blue Gum Cafe",
				LineItems:  []LineItemRequest{{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true}},
			})
			require.NoError(t, err)
			repo.invoices[inv.ID].Status = tc.from

			updated, err := svc.UpdateStatus(ctx, inv.ID, tc.to)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStatus)
			}
		})
	}
}

func TestServiceUpdateStatusUnknownStatus(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateStatus(context.Background(), 1, Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestServiceMarkOverdue(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
		DueDate:    testDate().AddDate(0, 0, 7),
		LineItems:  []LineItemRequest{{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true}},
	})
	require.NoError(t, err)
	repo.invoices[inv.ID].Status = StatusSent

	n, err := svc.MarkOverdue(ctx, testDate().AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, after.Status)
}

func TestServiceTotalsDrift(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Date:       testDate(),
		ClientName: "Blue Gum Cafe",
		LineItems:  []LineItemRequest{{Description: "Work", Quantity: 1, UnitPrice: 100, GST: true}},
	})
	require.NoError(t, err)

	drifted, err := svc.TotalsDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifted)

	repo.invoices[inv.ID].Total = 999

	drifted, err = svc.TotalsDrift(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{inv.Number}, drifted)
}

func TestServiceGetNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, ErrNotFound))
}
