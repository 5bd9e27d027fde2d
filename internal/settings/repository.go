package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company settings not configured")

// The table holds at most one row, keyed by a fixed id.
const singletonID = 1

type Repository interface {
	Get(ctx context.Context) (*CompanySettings, error)
	Upsert(ctx context.Context, s CompanySettings) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Get(ctx context.Context) (*CompanySettings, error) {
	var s CompanySettings
	var phone, email, bsb, account, accountName, notes, invoiceNotes, estimateNotes pgtype.Text
	var updatedAt pgtype.Timestamptz

	err := r.db.QueryRow(ctx,
		`SELECT company_name, abn, address, phone, email, bank_bsb, bank_account,
		        bank_account_name, notes, invoice_notes, estimate_notes, updated_at
		 FROM company_settings WHERE id = $1`, singletonID).Scan(
		&s.CompanyName, &s.ABN, &s.Address, &phone, &email, &bsb, &account,
		&accountName, &notes, &invoiceNotes, &estimateNotes, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if phone.Valid {
		s.Phone = phone.String
	}
	if email.Valid {
		s.Email = email.String
	}
	if bsb.Valid {
		s.BankBSB = bsb.String
	}
	if account.Valid {
		s.BankAccount = account.String
	}
	if accountName.Valid {
		s.BankAccountName = accountName.String
	}
	if notes.Valid {
		s.Notes = notes.String
	}
	if invoiceNotes.Valid {
		s.InvoiceNotes = invoiceNotes.String
	}
	if estimateNotes.Valid {
		s.EstimateNotes = estimateNotes.String
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, s CompanySettings) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO company_settings
		 (id, company_name, abn, address, phone, email, bank_bsb, bank_account,
		  bank_account_name, notes, invoice_notes, estimate_notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   company_name = EXCLUDED.company_name,
		   abn = EXCLUDED.abn,
		   address = EXCLUDED.address,
		   phone = EXCLUDED.phone,
		   email = EXCLUDED.email,
		   bank_bsb = EXCLUDED.bank_bsb,
		   bank_account = EXCLUDED.bank_account,
		   bank_account_name = EXCLUDED.bank_account_name,
		   notes = EXCLUDED.notes,
		   invoice_notes = EXCLUDED.invoice_notes,
		   estimate_notes = EXCLUDED.estimate_notes,
		   updated_at = NOW()`,
		singletonID, s.CompanyName, s.ABN, s.Address, s.Phone, s.Email, s.BankBSB,
		s.BankAccount, s.BankAccountName, s.Notes, s.InvoiceNotes, s.EstimateNotes)
	return err
}
