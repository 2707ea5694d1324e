// Package storage persists the customer↔email mapping and per-user
// account omission sets in SQLite. Upstream account and transaction data
// is never stored here; it is fetched fresh per request.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"networth/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetCustomerByEmail returns the stored mapping for an email, or
// core.ErrCustomerNotFound when no record exists.
func (r *SQLiteRepository) GetCustomerByEmail(ctx context.Context, email string) (core.Customer, error) {
	var c core.Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT email, customer_id, created_at FROM customers WHERE email = ?`, email,
	).Scan(&c.Email, &c.CustomerID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Customer{}, core.ErrCustomerNotFound
	}
	if err != nil {
		return core.Customer{}, fmt.Errorf("get customer by email: %w", err)
	}
	return c, nil
}

// CreateCustomer stores a new email→customer mapping.
func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c core.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (email, customer_id) VALUES (?, ?)`,
		c.Email, c.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	slog.InfoContext(ctx, "Customer mapping saved",
		"email", c.Email,
		"customer_id", c.CustomerID)

	return nil
}

// ToggleOmittedAccount flips an account's membership in the user's
// omission set. Returns true when the account is now omitted, false when
// the call removed it from the set.
func (r *SQLiteRepository) ToggleOmittedAccount(ctx context.Context, email, accountID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM omitted_accounts WHERE email = ? AND account_id = ?`,
		email, accountID,
	)
	if err != nil {
		return false, fmt.Errorf("delete omitted account: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	omitted := removed == 0
	if omitted {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO omitted_accounts (email, account_id) VALUES (?, ?)`,
			email, accountID,
		); err != nil {
			return false, fmt.Errorf("insert omitted account: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}

	slog.InfoContext(ctx, "Omission set updated",
		"email", email,
		"account_id", accountID,
		"omitted", omitted)

	return omitted, nil
}

// ListOmittedAccounts returns the user's omission set, oldest first. A
// user with no record yields an empty list, not an error.
func (r *SQLiteRepository) ListOmittedAccounts(ctx context.Context, email string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id FROM omitted_accounts WHERE email = ? ORDER BY created_at, account_id`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("list omitted accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan omitted account: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate omitted accounts: %w", err)
	}
	return ids, nil
}
