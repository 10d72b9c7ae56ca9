// Package appcontext holds the process-wide application state a sync cycle
// depends on: the database handle and the account store on top of it.
//
// A Context is created once and passed explicitly to the components that need
// it. Nothing is reachable through package-level state.
package appcontext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/livinlefevreloca/syncbridge/internal/account"
	"github.com/livinlefevreloca/syncbridge/internal/db"
)

// ErrNotReady is returned by accessors used before Initialize succeeded
var ErrNotReady = errors.New("appcontext: not initialized")

// Ensure Context can stand in for the account collaborators.
var (
	_ account.Resolver = (*Context)(nil)
	_ account.Lister   = (*Context)(nil)
)

// Context owns the database and exposes readiness to sync cycles
type Context struct {
	config db.Config
	logger *slog.Logger

	mu       sync.RWMutex
	database *db.DB
	accounts *db.AccountStore
	ready    bool
	closed   bool
}

// New creates an uninitialized context. Call Initialize before use.
func New(config db.Config, logger *slog.Logger) *Context {
	return &Context{config: config, logger: logger}
}

// Initialize opens the database and applies pending migrations. Calling it
// again after success is a no-op, and a failed attempt may be retried.
func (c *Context) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("appcontext: closed")
	}
	if c.ready {
		return nil
	}

	database, err := db.OpenWithConfig(ctx, c.config)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if !c.config.SkipMigrations {
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	c.database = database
	c.accounts = db.NewAccountStore(database)
	c.ready = true

	c.logger.Info("application context initialized", "driver", c.config.Driver, "dsn", c.config.DSN)
	return nil
}

// IsReady reports whether Initialize has completed and Close has not been called
func (c *Context) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// DB returns the open database
func (c *Context) DB() (*db.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil, ErrNotReady
	}
	return c.database, nil
}

// ResolveByName implements account.Resolver
func (c *Context) ResolveByName(ctx context.Context, name string) (*account.Account, error) {
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	return store.ResolveByName(ctx, name)
}

// ListAccounts implements account.Lister
func (c *Context) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	return store.ListAccounts(ctx)
}

func (c *Context) store() (*db.AccountStore, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil, ErrNotReady
	}
	return c.accounts, nil
}

// Close releases the database. The context cannot be initialized again.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.ready = false

	if c.database == nil {
		return nil
	}
	err := c.database.Close()
	c.database = nil
	c.accounts = nil
	return err
}
