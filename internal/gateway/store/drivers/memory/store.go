package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/domain"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store"
)

var errClosed = errors.New("memory: store closed")

// Store keeps accounts in maps behind a single RWMutex.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]domain.Account
	email  map[string]string // email -> id
	name   map[string]string // lower(display name) -> id
	closed bool
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		byID:  make(map[string]domain.Account),
		email: make(map[string]string),
		name:  make(map[string]string),
	}
}

func (s *Store) Accounts() store.Accounts { return accounts{s} }

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type accounts struct{ s *Store }

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (a accounts) CreateAccount(ctx context.Context, acc domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if a.s.closed {
		return errClosed
	}
	if _, ok := a.s.email[acc.Email]; ok {
		return store.ErrEmailTaken
	}
	if _, ok := a.s.name[nameKey(acc.DisplayName)]; ok {
		return store.ErrDisplayNameTaken
	}

	a.s.byID[acc.ID] = acc
	a.s.email[acc.Email] = acc.ID
	a.s.name[nameKey(acc.DisplayName)] = acc.ID
	return nil
}

func (a accounts) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	acc, ok := a.s.byID[id]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return acc, nil
}

func (a accounts) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return a.lookup(ctx, a.s.email, email)
}

func (a accounts) GetAccountByDisplayName(ctx context.Context, name string) (domain.Account, error) {
	return a.lookup(ctx, a.s.name, nameKey(name))
}

func (a accounts) lookup(ctx context.Context, index map[string]string, key string) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return a.s.byID[id], nil
}

func (a accounts) CountAccounts(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return len(a.s.byID), nil
}
