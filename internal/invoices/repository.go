package invoices

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

var ErrNotFound = errors.New("invoice not found")

const sequenceType = "invoice"

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	ListForPeriod(ctx context.Context, from, to time.Time, statuses []Status) ([]Invoice, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	Update(ctx context.Context, id int64, inv Invoice) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	NextNumber(ctx context.Context) (string, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
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

const invoiceColumns = `id, number, date, client_name, client_address, due_date,
       payment_terms, line_items, subtotal, gst, total, status, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1", invoiceColumns), id)
	return scanInvoice(row)
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM invoices WHERE number = $1", invoiceColumns), number)
	return scanInvoice(row)
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM invoices %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs, err := collectInvoices(rows)
	if err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

// ListForPeriod returns invoices dated within [from, to] inclusive,
// restricted to the given statuses, in ascending date order for
// reporting.
func (r *repository) ListForPeriod(ctx context.Context, from, to time.Time, statuses []Status) ([]Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices
		WHERE date >= $1 AND date <= $2 AND status = ANY($3)
		ORDER BY date ASC, id ASC`, invoiceColumns)

	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	rows, err := r.db.Query(ctx, query, from, to, statusStrings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	lineJSON, err := json.Marshal(inv.LineItems)
	if err != nil {
		return 0, fmt.Errorf("marshal line items: %w", err)
	}

	var subtotal, gst, total pgtype.Numeric
	_ = subtotal.Scan(fmt.Sprintf("%f", inv.Subtotal))
	_ = gst.Scan(fmt.Sprintf("%f", inv.GST))
	_ = total.Scan(fmt.Sprintf("%f", inv.Total))

	var id int64
	err = r.db.QueryRow(ctx, `INSERT INTO invoices
		(number, date, client_name, client_address, due_date, payment_terms,
		 line_items, subtotal, gst, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id`,
		inv.Number, inv.Date, inv.ClientName, inv.ClientAddress, inv.DueDate,
		string(inv.PaymentTerms), lineJSON, subtotal, gst, total, string(inv.Status),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, inv Invoice) error {
	lineJSON, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	var subtotal, gst, total pgtype.Numeric
	_ = subtotal.Scan(fmt.Sprintf("%f", inv.Subtotal))
	_ = gst.Scan(fmt.Sprintf("%f", inv.GST))
	_ = total.Scan(fmt.Sprintf("%f", inv.Total))

	tag, err := r.db.Exec(ctx, `UPDATE invoices SET
		date = $1, client_name = $2, client_address = $3, due_date = $4,
		payment_terms = $5, line_items = $6, subtotal = $7, gst = $8,
		total = $9, updated_at = NOW()
		WHERE id = $10`,
		inv.Date, inv.ClientName, inv.ClientAddress, inv.DueDate,
		string(inv.PaymentTerms), lineJSON, subtotal, gst, total, id)
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
		"UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2",
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
	tag, err := r.db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NextNumber allocates the next invoice number from a dedicated
// sequence row. The first allocation seeds the sequence from the
// highest existing number, so sequences continue from legacy data and
// two concurrent creations can never observe the same value.
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
		return billing.FormatNumber(billing.InvoicePrefix, next), nil
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
	return billing.FormatNumber(billing.InvoicePrefix, next), nil
}

func (r *repository) maxExistingNumber(ctx context.Context) (int, error) {
	rows, err := r.db.Query(ctx, "SELECT number FROM invoices")
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
	return billing.MaxValue(billing.InvoicePrefix, numbers), nil
}

// MarkOverdue flips sent invoices whose due date has passed to
// overdue and reports how many rows changed.
func (r *repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE invoices SET status = $1, updated_at = NOW() WHERE status = $2 AND due_date < $3",
		string(StatusOverdue), string(StatusSent), asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var date, dueDate pgtype.Date
	var terms pgtype.Text
	var lineJSON []byte
	var subtotal, gst, total pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&inv.ID, &inv.Number, &date, &inv.ClientName, &inv.ClientAddress, &dueDate,
		&terms, &lineJSON, &subtotal, &gst, &total, &inv.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if date.Valid {
		inv.Date = date.Time
	}
	if dueDate.Valid {
		inv.DueDate = dueDate.Time
	}
	if terms.Valid {
		inv.PaymentTerms = PaymentTerms(terms.String)
	}
	if len(lineJSON) > 0 {
		if err := json.Unmarshal(lineJSON, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	if subtotal.Valid {
		f, _ := subtotal.Float64Value()
		inv.Subtotal = f.Float64
	}
	if gst.Valid {
		f, _ := gst.Float64Value()
		inv.GST = f.Float64
	}
	if total.Valid {
		f, _ := total.Float64Value()
		inv.Total = f.Float64
	}
	if createdAt.Valid {
		inv.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		inv.UpdatedAt = updatedAt.Time
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	var invs []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}
