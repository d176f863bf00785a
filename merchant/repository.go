package merchant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var ErrNotFound = fmt.Errorf("not found")

var ErrConflict = fmt.Errorf("conflict")

// Dialect selects placeholder syntax and driver specific errors of a SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Repository keeps the profile and history in memory, or in a SQL database
// when built with NewSQLRepository.
type Repository struct {
	Profile      *models.Profile
	Transactions []*models.Transaction

	mu      sync.RWMutex
	db      *sql.DB
	dialect Dialect
}

func NewRepository() *Repository {
	return &Repository{
		Transactions: make([]*models.Transaction, 0),
	}
}

// NewSQLRepository constructs a db-backed repository. Call Migrate before use.
func NewSQLRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS merchant_profile (
		id             INTEGER PRIMARY KEY,
		pix_key        TEXT NOT NULL,
		recipient_name TEXT NOT NULL,
		city           TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		tx_id      TEXT PRIMARY KEY,
		amount     TEXT NOT NULL,
		created_at TEXT NOT NULL,
		br_code    TEXT NOT NULL
	)`,
}

// Migrate creates the tables when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) GetProfile(ctx context.Context) (*models.Profile, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		if r.Profile == nil {
			return nil, ErrNotFound
		}
		p := *r.Profile
		return &p, nil
	}
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT pix_key, recipient_name, city FROM merchant_profile WHERE id=$1`), 1)
	var p models.Profile
	if err := row.Scan(&p.PixKey, &p.RecipientName, &p.City); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		p := *profile
		r.Profile = &p
		return nil
	}
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO merchant_profile(id, pix_key, recipient_name, city)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			pix_key = excluded.pix_key,
			recipient_name = excluded.recipient_name,
			city = excluded.city
	`), 1, profile.PixKey, profile.RecipientName, profile.City)
	return err
}

func (r *Repository) AddTransaction(ctx context.Context, transaction *models.Transaction) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, t := range r.Transactions {
			if t.ID == transaction.ID {
				return fmt.Errorf("transaction %s exists: %w", t.ID, ErrConflict)
			}
		}
		t := *transaction
		r.Transactions = append(r.Transactions, &t)
		return nil
	}
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO transactions(tx_id, amount, created_at, br_code)
		VALUES ($1,$2,$3,$4)
	`), transaction.ID, transaction.Amount, transaction.Date, transaction.BRCode)
	if r.isUniqueViolation(err) {
		return fmt.Errorf("transaction %s exists: %w", transaction.ID, ErrConflict)
	}
	return err
}

// ListTransactions returns up to limit transactions, newest first. A limit
// of zero or less returns all of them.
func (r *Repository) ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		out := make([]*models.Transaction, 0, len(r.Transactions))
		for i := len(r.Transactions) - 1; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			t := *r.Transactions[i]
			out = append(out, &t)
		}
		return out, nil
	}
	query := `SELECT tx_id, amount, created_at, br_code FROM transactions ORDER BY tx_id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Date, &t.BRCode); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		for _, t := range r.Transactions {
			if t.ID == id {
				c := *t
				return &c, nil
			}
		}
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT tx_id, amount, created_at, br_code FROM transactions WHERE tx_id=$1`), id)
	var t models.Transaction
	if err := row.Scan(&t.ID, &t.Amount, &t.Date, &t.BRCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// rebind rewrites $n placeholders to ? for SQLite.
func (r *Repository) rebind(query string) string {
	if r.dialect != SQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (r *Repository) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if r.dialect == SQLite {
		var se *sqlite.Error
		if errors.As(err, &se) {
			code := se.Code()
			return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
		}
		return false
	}
	return isUniqueViolation(err)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
