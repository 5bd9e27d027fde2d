package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	stored *CompanySettings
}

func (m *mockRepository) Get(ctx context.Context) (*CompanySettings, error) {
	if m.stored == nil {
		return nil, ErrNotFound
	}
	cp := *m.stored
	return &cp, nil
}

func (m *mockRepository) Upsert(ctx context.Context, s CompanySettings) error {
	m.stored = &s
	return nil
}

func TestServiceGetEmpty(t *testing.T) {
	svc := NewService(&mockRepository{})

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUpsertThenGet(t *testing.T) {
	svc := NewService(&mockRepository{})
	ctx := context.Background()

	cfg, err := svc.Upsert(ctx, UpsertSettingsRequest{
		CompanyName:  "Ledgerlane Demo Pty Ltd",
		ABN:          "51 824 753 556",
		Address:      "12 Harbour St, Sydney NSW 2000",
		InvoiceNotes: "Payment due by the date shown.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ledgerlane Demo Pty Ltd", cfg.CompanyName)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "51 824 753 556", got.ABN)
	assert.Equal(t, "Payment due by the date shown.", got.InvoiceNotes)
}

func TestServiceUpsertValidation(t *testing.T) {
	svc := NewService(&mockRepository{})

	_, err := svc.Upsert(context.Background(), UpsertSettingsRequest{CompanyName: "X"})
	assert.Error(t, err)

	_, err = svc.Upsert(context.Background(), UpsertSettingsRequest{
		CompanyName: "X", ABN: "1", Address: "a", Email: "bad-email",
	})
	assert.Error(t, err)
}
