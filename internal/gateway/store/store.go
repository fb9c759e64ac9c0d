package store

import (
	"context"
	"errors"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/domain"
)

var (
	ErrNotFound         = errors.New("store: not found")
	ErrEmailTaken       = errors.New("store: email already registered")
	ErrDisplayNameTaken = errors.New("store: display name already taken")
)

// Store is the root data access interface. Drivers live under drivers/:
// memory (the default, gone after a restart) and sqlite.
type Store interface {
	Accounts() Accounts

	// Ping verifies the backend is usable.
	Ping(ctx context.Context) error

	Close() error
}

type Accounts interface {
	// CreateAccount inserts a; it returns ErrEmailTaken or
	// ErrDisplayNameTaken when either unique key is in use.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches the normalised email exactly.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByDisplayName ignores case.
	GetAccountByDisplayName(ctx context.Context, name string) (domain.Account, error)

	CountAccounts(ctx context.Context) (int, error)
}
