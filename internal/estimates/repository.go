package estimates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerlane/ledgerlane/internal/billing"
	"github.com/ledgerlane/ledgerlane/internal/platform/db"
)

var ErrNotFound = errors.New("estimate not found")

const sequenceType = "estimate"

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Estimate, error)
	GetByNumber(ctx context.Context, number string) (*Estimate, error)
	List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error)
	Create(ctx context.Context, est Estimate) (int64, error)
	Update(ctx context.Context, id int64, est Estimate) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	NextNumber(ctx context.Context) (string, error)
	MarkExpired(ctx context.Context, asOf time.Time) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const estimateColumns = `id, number, date, client_name, client_address, expiry_date,
       line_items, subtotal, gst, total, status, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Estimate, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM estimates WHERE id = $1", estimateColumns), id)
	return scanEstimate(row)
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Estimate, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM estimates WHERE number = $1", estimateColumns), number)
	return scanEstimate(row)
}

func (r *repository) List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM estimates %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM estimates %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`,
		estimateColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ests []Estimate
	for rows.Next() {
		est, err := scanEstimate(rows)
		if err != nil {
			return nil, 0, err
		}
		ests = append(ests, *est)
	}
	return ests, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, est Estimate) (int64, error) {
	lineJSON, err := json.Marshal(est.LineItems)
	if err != nil {
		return 0, fmt.Errorf("marshal line items: %w", err)
	}

	var subtotal, gst, total pgtype.Numeric
	_ = subtotal.Scan(fmt.Sprintf("%f", est.Subtotal))
	_ = gst.Scan(fmt.Sprintf("%f", est.GST))
	_ = total.Scan(fmt.Sprintf("%f", est.Total))

	var id int64
	err = r.db.QueryRow(ctx, `INSERT INTO estimates
		(number, date, client_name, client_address, expiry_date,
		 line_items, subtotal, gst, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id`,
		est.Number, est.Date, est.ClientName, est.ClientAddress, est.ExpiryDate,
		lineJSON, subtotal, gst, total, string(est.Status),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, est Estimate) error {
	lineJSON, err := json.Marshal(est.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	var subtotal, gst, total pgtype.Numeric
	_ = subtotal.Scan(fmt.Sprintf("%f", est.Subtotal))
	_ = gst.Scan(fmt.Sprintf("%f", est.GST))
	_ = total.Scan(fmt.Sprintf("%f", est.Total))

	tag, err := r.db.Exec(ctx, `UPDATE estimates SET
		date = $1, client_name = $2, client_address = $3, expiry_date = $4,
		line_items = $5, subtotal = $6, gst = $7, total = $8, updated_at = NOW()
		WHERE id = $9`,
		est.Date, est.ClientName, est.ClientAddress, est.ExpiryDate,
		lineJSON, subtotal, gst, total, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2",
		string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM estimates WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NextNumber allocates the next estimate number from the shared
// sequence table, seeding from legacy numbers on first use.
func (r *repository) NextNumber(ctx context.Context) (string, error) {
	var last int64
	err := r.db.QueryRow(ctx,
		"SELECT last_value FROM doc_sequences WHERE doc_type = $1 FOR UPDATE",
		sequenceType).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		seed, seedErr := r.maxExistingNumber(ctx)
		if seedErr != nil {
			return "", seedErr
		}
		next := seed + 1
		if _, err := r.db.Exec(ctx,
			"INSERT INTO doc_sequences (doc_type, last_value) VALUES ($1, $2)",
			sequenceType, next); err != nil {
			return "", err
		}
		return billing.FormatNumber(billing.EstimatePrefix, next), nil
	}
	if err != nil {
		return "", err
	}

	var next int
	if err := r.db.QueryRow(ctx,
		"UPDATE doc_sequences SET last_value = last_value + 1 WHERE doc_type = $1 RETURNING last_value",
		sequenceType).Scan(&next); err != nil {
		return "", err
	}
	return billing.FormatNumber(billing.EstimatePrefix, next), nil
}

func (r *repository) maxExistingNumber(ctx context.Context) (int, error) {
	rows, err := r.db.Query(ctx, "SELECT number FROM estimates")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return billing.MaxValue(billing.EstimatePrefix, numbers), nil
}

// MarkExpired flips sent estimates past their expiry date to expired.
func (r *repository) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE estimates SET status = $1, updated_at = NOW() WHERE status = $2 AND expiry_date < $3",
		string(StatusExpired), string(StatusSent), asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanEstimate(row pgx.Row) (*Estimate, error) {
	var est Estimate
	var date, expiryDate pgtype.Date
	var lineJSON []byte
	var subtotal, gst, total pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&est.ID, &est.Number, &date, &est.ClientName, &est.ClientAddress, &expiryDate,
		&lineJSON, &subtotal, &gst, &total, &est.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if date.Valid {
		est.Date = date.Time
	}
	if expiryDate.Valid {
		est.ExpiryDate = expiryDate.Time
	}
	if len(lineJSON) > 0 {
		if err := json.Unmarshal(lineJSON, &est.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	if subtotal.Valid {
		f, _ := subtotal.Float64Value()
		est.Subtotal = f.Float64
	}
	if gst.Valid {
		f, _ := gst.Float64Value()
		est.GST = f.Float64
	}
	if total.Valid {
		f, _ := total.Float64Value()
		est.Total = f.Float64
	}
	if createdAt.Valid {
		est.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		est.UpdatedAt = updatedAt.Time
	}
	return &est, nil
}
