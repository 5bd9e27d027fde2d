package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// Session is the token payload kept in Redis for the lifetime of a
// login.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	repo   Repository
	client *redis.Client
	ttl    time.Duration
}

func NewService(repo Repository, client *redis.Client, ttl time.Duration) *Service {
	return &Service{repo: repo, client: client, ttl: ttl}
}

// Authenticate validates credentials and returns the matching user.
// Unknown usernames, wrong passwords and disabled accounts are all
// reported identically so responses do not leak account existence.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token backed by Redis.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.Token), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Resolve looks up the session behind a bearer token.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Logout revokes a token. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CreateUser registers an account with a bcrypt hashed password.
func (s *Service) CreateUser(ctx context.Context, username, displayName, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, username, displayName, string(hash))
}

func sessionKey(token string) string {
	return "session:" + token
}
