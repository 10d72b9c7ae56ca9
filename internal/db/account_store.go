package db

import (
	"context"
	"fmt"

	"github.com/livinlefevreloca/syncbridge/internal/account"
)

// AccountStore adapts DB to account.Resolver and account.Lister
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new account store adapter
func NewAccountStore(database *DB) *AccountStore {
	return &AccountStore{db: database}
}

// ResolveByName implements account.Resolver
func (s *AccountStore) ResolveByName(ctx context.Context, name string) (*account.Account, error) {
	row, err := s.db.GetAccount(ctx, name)
	if IsNotFound(err) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", name, err)
	}
	return toDomainAccount(row)
}

// ListAccounts implements account.Lister
func (s *AccountStore) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.db.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	result := make([]*account.Account, 0, len(rows))
	for i := range rows {
		a, err := toDomainAccount(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func toDomainAccount(row *Account) (*account.Account, error) {
	status, err := account.ParseVerificationStatus(row.VerificationStatus)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", row.Name, err)
	}
	return &account.Account{
		Name:               row.Name,
		Origin:             row.Origin,
		VerificationStatus: status,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}
