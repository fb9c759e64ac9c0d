package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/domain"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store"
)

const accountColumns = `id, email, display_name, password_hash, created_at`

type accountsRepo struct {
	db *sql.DB
}

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, display_name, name_key, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.DisplayName, nameKey(a.DisplayName), a.PasswordHash, a.CreatedAt.UnixNano(),
	)
	return mapUnique(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

func (r *accountsRepo) GetAccountByDisplayName(ctx context.Context, name string) (domain.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE name_key = ?`, nameKey(name))
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *accountsRepo) get(ctx context.Context, query string, arg string) (domain.Account, error) {
	var (
		a       domain.Account
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &created)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	return a, nil
}

// mapUnique turns unique index violations into the store sentinels.
func mapUnique(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: accounts.email"):
		return store.ErrEmailTaken
	case strings.Contains(msg, "UNIQUE constraint failed: accounts.name_key"):
		return store.ErrDisplayNameTaken
	}
	return err
}
