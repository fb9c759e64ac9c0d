package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/domain"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store"
	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/cryptox"
	"github.com/marcos777-ux/Newsick-public/pkg/idx"
	"github.com/marcos777-ux/Newsick-public/pkg/jwtx"
	"github.com/samber/oops"
)

// AccountService registers accounts and signs them in.
type AccountService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Signer   jwtx.Signer
	Issuer   string
	TokenTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Session is what a successful register or login hands back.
type Session struct {
	Token   string
	Account domain.Account
}

// Register creates an account from the two registration steps and signs
// it in. The same rules the client checks locally are enforced again here.
func (s *AccountService) Register(ctx context.Context, creds authsdk.Credentials) (Session, error) {
	creds = creds.Normalized()
	if err := creds.ValidateRegistration(); err != nil {
		return Session{}, validationError(err)
	}
	if err := authsdk.ValidateDisplayName(creds.DisplayName); err != nil {
		return Session{}, validationError(err)
	}

	hash, err := s.Hasher.Hash(creds.Secret)
	if err != nil {
		return Session{}, oops.In("account").With("operation", "hash password").Wrap(err)
	}

	acc := domain.Account{
		ID:           idx.NewAt(s.now()).String(),
		Email:        creds.Identifier,
		DisplayName:  creds.DisplayName,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	err = s.Store.Accounts().CreateAccount(ctx, acc)
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return Session{}, oops.Code(CodeAccountExists).
			Public("An account with this email already exists.").
			Errorf("email already registered")
	case errors.Is(err, store.ErrDisplayNameTaken):
		return Session{}, oops.Code(CodeAccountExists).
			Public("That username is already taken.").
			With("display_name", acc.DisplayName).
			Errorf("display name already taken")
	case err != nil:
		return Session{}, oops.In("account").With("operation", "create account").Wrap(err)
	}

	return s.issue(acc)
}

// Login signs in with an email or a display name.
func (s *AccountService) Login(ctx context.Context, creds authsdk.Credentials) (Session, error) {
	creds = creds.Normalized()
	if err := creds.ValidateLogin(); err != nil {
		return Session{}, validationError(err)
	}

	accounts := s.Store.Accounts()
	var (
		acc domain.Account
		err error
	)
	if authsdk.IsEmail(creds.Identifier) {
		acc, err = accounts.GetAccountByEmail(ctx, creds.Identifier)
	} else {
		acc, err = accounts.GetAccountByDisplayName(ctx, creds.Identifier)
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		s.Hasher.Burn(creds.Secret)
		return Session{}, invalidCredentials()
	case err != nil:
		return Session{}, oops.In("account").With("operation", "find account").Wrap(err)
	}

	if err := s.Hasher.Verify(creds.Secret, acc.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return Session{}, invalidCredentials()
		}
		return Session{}, oops.In("account").With("account_id", acc.ID).Wrap(err)
	}

	return s.issue(acc)
}

// Profile returns the account behind an access token subject.
func (s *AccountService) Profile(ctx context.Context, accountID string) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Account{}, oops.Code(CodeAccountNotFound).
			With("account_id", accountID).
			Public("Account not found.").
			Errorf("account not found")
	case err != nil:
		return domain.Account{}, oops.In("account").With("account_id", accountID).Wrap(err)
	}
	return acc, nil
}

func (s *AccountService) issue(acc domain.Account) (Session, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(acc.ID, acc.Email, acc.DisplayName, s.Issuer, ttl, s.now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, oops.In("account").With("operation", "sign token").Wrap(err)
	}
	return Session{Token: token, Account: acc}, nil
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Public(MsgInvalidCredentials).Errorf("invalid credentials")
}

// validationError keeps the field level message for the client.
func validationError(err error) error {
	msg := err.Error()
	var valErr *authsdk.ValidationError
	if errors.As(err, &valErr) {
		msg = valErr.Message()
	}
	return oops.Code(CodeValidationFailed).Public(strings.TrimSpace(msg)).Wrap(err)
}
