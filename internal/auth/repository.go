package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, displayName, passwordHash string) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = "id, username, display_name, password_hash, is_active, created_at, updated_at"

func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username)
	return scanUser(row)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (r *repository) Create(ctx context.Context, username, displayName, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO users
		(username, display_name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		RETURNING id`,
		username, displayName, passwordHash).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash,
		&u.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.Time
	}
	return &u, nil
}
