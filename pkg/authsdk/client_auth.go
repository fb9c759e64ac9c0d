package authsdk

import (
	"context"
)

const (
	pathLogin    = "/api/login"
	pathRegister = "/api/register"
)

// Login submits credentials to POST /api/login.
//
// A reply of success=false is not an error: the outcome is returned and
// outcome.Err() gives the *RejectionError. The error return is reserved for
// local validation (*ValidationError) and transport failures (*TransportError).
func (c *SDKClient) Login(ctx context.Context, creds Credentials) (*AuthOutcome, error) {
	creds = creds.Normalized()
	if c.ValidateLocally {
		if err := creds.ValidateLogin(); err != nil {
			return nil, err
		}
	}

	resp, err := c.postJSON(ctx, "login", pathLogin, LoginRequest{
		Identifier: creds.Identifier,
		Secret:     creds.Secret,
	})
	if err != nil {
		return nil, err
	}

	return decodeOutcome(resp, "login")
}

// Register submits a new account to POST /api/register. Same error contract
// as Login.
func (c *SDKClient) Register(ctx context.Context, creds Credentials) (*AuthOutcome, error) {
	creds = creds.Normalized()
	if c.ValidateLocally {
		if err := creds.ValidateRegistration(); err != nil {
			return nil, err
		}
		if err := ValidateDisplayName(creds.DisplayName); err != nil {
			return nil, err
		}
	}

	resp, err := c.postJSON(ctx, "register", pathRegister, RegisterRequest{
		Identifier:  creds.Identifier,
		Secret:      creds.Secret,
		DisplayName: creds.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return decodeOutcome(resp, "register")
}
