package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("client not found")

type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, address, email, phone, abn, notes, created_at, updated_at
		 FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		whereClause = fmt.Sprintf("WHERE (name ILIKE $%d OR email ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM clients %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, name, address, email, phone, abn, notes, created_at, updated_at
		FROM clients %s ORDER BY name LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO clients (name, address, email, phone, abn, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id`,
		c.Name, c.Address, c.Email, c.Phone, c.ABN, c.Notes).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE clients SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "address", "email", "phone", "abn", "notes"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	var address, email, phone, abn, notes pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&c.ID, &c.Name, &address, &email, &phone, &abn, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if address.Valid {
		c.Address = address.String
	}
	if email.Valid {
		c.Email = email.String
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	if abn.Valid {
		c.ABN = abn.String
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}
