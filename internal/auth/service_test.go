package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubRepo struct {
	users map[string]*User
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *stubRepo) Create(ctx context.Context, username, displayName, passwordHash string) (int64, error) {
	id := int64(len(s.users) + 1)
	s.users[username] = &User{ID: id, Username: username, DisplayName: displayName, PasswordHash: passwordHash, IsActive: true}
	return id, nil
}

func newTestService(t *testing.T) (*Service, *stubRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{users: map[string]*User{
		"admin": {ID: 1, Username: "admin", DisplayName: "Administrator", PasswordHash: string(hash), IsActive: true},
	}}
	return NewService(repo, client, time.Hour), repo
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Authenticate(context.Background(), "admin", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, repo := newTestService(t)
	repo.users["admin"].IsActive = false

	_, err := svc.Authenticate(context.Background(), "admin", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "admin", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, int64(1), sess.UserID)

	resolved, err := svc.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, resolved.UserID)
	assert.Equal(t, "admin", resolved.Username)
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "admin", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))

	_, err = svc.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogoutUnknownTokenIsNoError(t *testing.T) {
	svc, _ := newTestService(t)

	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "books", "Bookkeeper", "books123")
	require.NoError(t, err)

	stored := repo.users["books"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "books123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("books123")))
}
