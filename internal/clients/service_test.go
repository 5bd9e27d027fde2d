package clients

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	clients map[int64]*Client
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{clients: make(map[int64]*Client), nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var out []Client
	for _, c := range m.clients {
		if req.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, c Client) (int64, error) {
	id := m.nextID
	m.nextID++
	c.ID = id
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.clients[id] = &c
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	c, ok := m.clients[id]
	if !ok {
		return ErrNotFound
	}
	for col, v := range updates {
		s, _ := v.(string)
		switch col {
		case "name":
			c.Name = s
		case "address":
			c.Address = s
		case "email":
			c.Email = s
		case "phone":
			c.Phone = s
		case "abn":
			c.ABN = s
		case "notes":
			c.Notes = s
		}
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.clients[id]; !ok {
		return ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientRequest{
		Name:    "Acme Widgets Pty Ltd",
		Address: "1 Factory Rd, Melbourne VIC 3000",
		Email:   "ap@acmewidgets.example",
		ABN:     "11 111 111 111",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets Pty Ltd", got.Name)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateClientRequest{Name: ""})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), CreateClientRequest{Name: "X", Email: "not-an-email"})
	assert.Error(t, err)
}

func TestServiceUpdatePartial(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientRequest{Name: "Blue Gum Cafe", Phone: "02 9555 2222"})
	require.NoError(t, err)

	phone := "02 9555 9999"
	updated, err := svc.Update(ctx, c.ID, UpdateClientRequest{Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, "Blue Gum Cafe", updated.Name)
	assert.Equal(t, "02 9555 9999", updated.Phone)
}

func TestServiceUpdateNotFound(t *testing.T) {
	svc := NewService(newMockRepository())

	name := "Nobody"
	_, err := svc.Update(context.Background(), 99, UpdateClientRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceListSearch(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	for _, name := range []string{"Acme Widgets Pty Ltd", "Blue Gum Cafe", "Coastal Plumbing"} {
		_, err := svc.Create(ctx, CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	out, total, err := svc.List(ctx, ListClientsRequest{Search: "gum"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, out, 1)
	assert.Equal(t, "Blue Gum Cafe", out[0].Name)
}

func TestServiceDelete(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientRequest{Name: "Coastal Plumbing"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
