// Package account describes the accounts a sync cycle runs for and how they
// are looked up.
package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by a Resolver when no account has the given name.
var ErrNotFound = errors.New("account: not found")

// VerificationStatus records whether an account's credentials were accepted
// by the remote service.
type VerificationStatus int

const (
	NotVerified VerificationStatus = iota
	Succeeded
	Failed
)

// String returns a human-readable representation of the verification status
func (s VerificationStatus) String() string {
	switch s {
	case NotVerified:
		return "not_verified"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseVerificationStatus converts the String form back into a status
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch s {
	case "not_verified":
		return NotVerified, nil
	case "succeeded":
		return Succeeded, nil
	case "failed":
		return Failed, nil
	default:
		return NotVerified, fmt.Errorf("unknown verification status: %q", s)
	}
}

// Account is a configured account on a remote service
type Account struct {
	Name               string
	Origin             string
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CanSync reports whether the account's credentials are verified
func (a *Account) CanSync() bool {
	return a != nil && a.VerificationStatus == Succeeded
}

// Resolver looks accounts up by name
type Resolver interface {
	ResolveByName(ctx context.Context, name string) (*Account, error)
}

// Lister enumerates every known account
type Lister interface {
	ListAccounts(ctx context.Context) ([]*Account, error)
}

// MemoryStore is an in-memory Resolver and Lister
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryStore creates a store seeded with the given accounts
func NewMemoryStore(accounts ...*Account) *MemoryStore {
	s := &MemoryStore{accounts: make(map[string]*Account)}
	for _, a := range accounts {
		s.Put(a)
	}
	return s
}

// Put adds or replaces an account
func (s *MemoryStore) Put(a *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.accounts[a.Name] = &c
}

// Delete removes an account
func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, name)
}

// ResolveByName implements Resolver
func (s *MemoryStore) ResolveByName(_ context.Context, name string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[name]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

// ListAccounts implements Lister, ordered by name
func (s *MemoryStore) ListAccounts(_ context.Context) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		c := *a
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
