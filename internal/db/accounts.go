package db

import (
	"context"
	"database/sql"
	"time"
)

// CreateAccount inserts a new account
func (db *DB) CreateAccount(ctx context.Context, a *Account) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.VerificationStatus == "" {
		a.VerificationStatus = "not_verified"
	}

	query := `
		INSERT INTO accounts (name, origin, verification_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query, a.Name, a.Origin, a.VerificationStatus, a.CreatedAt, a.UpdatedAt)
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// GetAccount retrieves an account by name
func (db *DB) GetAccount(ctx context.Context, name string) (*Account, error) {
	a := &Account{}

	query := `
		SELECT name, origin, verification_status, created_at, updated_at
		FROM accounts
		WHERE name = ?
	`

	err := db.QueryRowContext(ctx, query, name).Scan(
		&a.Name,
		&a.Origin,
		&a.VerificationStatus,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return a, nil
}

// ListAccounts returns every account ordered by name
func (db *DB) ListAccounts(ctx context.Context) ([]Account, error) {
	query := `
		SELECT name, origin, verification_status, created_at, updated_at
		FROM accounts
		ORDER BY name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Name, &a.Origin, &a.VerificationStatus, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// SetVerificationStatus updates the credential verification status of an account
func (db *DB) SetVerificationStatus(ctx context.Context, name, status string) error {
	query := `
		UPDATE accounts
		SET verification_status = ?, updated_at = ?
		WHERE name = ?
	`

	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), name)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account and, through cascading keys, its timelines
func (db *DB) DeleteAccount(ctx context.Context, name string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM accounts WHERE name = ?", name)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
