package authsdk

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinSecretLength is the shortest password accepted at registration.
	MinSecretLength = 6

	// MaxSecretLength caps passwords so nobody hashes a novel.
	MaxSecretLength = 128

	// MaxDisplayNameLength is the longest username accepted at registration.
	MaxDisplayNameLength = 32
)

const (
	FieldIdentifier  = "identifier"
	FieldEmail       = "email"
	FieldSecret      = "secret"
	FieldDisplayName = "displayName"
	FieldToken       = "token"
)

const reasonRequired = "is required"

// reEmail only checks for a local part, a domain separator and a domain.
// Anything stricter belongs on the gateway.
var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// NormalizeIdentifier trims the identifier and lower-cases it when it looks
// like an email. Usernames keep their case.
func NormalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}

// IsEmail reports whether the identifier is a well-formed email address.
func IsEmail(identifier string) bool {
	return reEmail.MatchString(strings.TrimSpace(identifier))
}

// Normalized returns a copy with the identifier normalised and the display
// name trimmed. The secret is left untouched.
func (c Credentials) Normalized() Credentials {
	return Credentials{
		Identifier:  NormalizeIdentifier(c.Identifier),
		Secret:      c.Secret,
		DisplayName: strings.TrimSpace(c.DisplayName),
	}
}

// ValidateLogin checks the fields a login needs: both must be present.
func (c Credentials) ValidateLogin() error {
	if strings.TrimSpace(c.Identifier) == "" {
		return &ValidationError{Field: FieldIdentifier, Reason: reasonRequired}
	}
	if c.Secret == "" {
		return &ValidationError{Field: FieldSecret, Reason: reasonRequired}
	}
	return nil
}

// ValidateRegistration checks the first registration step: a well-formed
// email and a long enough password. The display name is checked separately
// since it is collected in a second step.
func (c Credentials) ValidateRegistration() error {
	identifier := strings.TrimSpace(c.Identifier)
	switch {
	case identifier == "":
		return &ValidationError{Field: FieldEmail, Reason: reasonRequired}
	case !reEmail.MatchString(identifier):
		return &ValidationError{Field: FieldEmail, Reason: "must be a valid email address"}
	}

	n := utf8.RuneCountInString(c.Secret)
	switch {
	case c.Secret == "":
		return &ValidationError{Field: FieldSecret, Reason: reasonRequired}
	case n < MinSecretLength:
		return &ValidationError{
			Field:  FieldSecret,
			Reason: fmt.Sprintf("must be at least %d characters", MinSecretLength),
		}
	case n > MaxSecretLength:
		return &ValidationError{
			Field:  FieldSecret,
			Reason: fmt.Sprintf("must be at most %d characters", MaxSecretLength),
		}
	}

	return nil
}

// ValidateDisplayName checks the second registration step.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return &ValidationError{Field: FieldDisplayName, Reason: reasonRequired}
	case utf8.RuneCountInString(name) > MaxDisplayNameLength:
		return &ValidationError{
			Field:  FieldDisplayName,
			Reason: fmt.Sprintf("must be at most %d characters", MaxDisplayNameLength),
		}
	case strings.Contains(name, "@"):
		// Login accepts either form, so a name that looks like an email
		// would be ambiguous.
		return &ValidationError{Field: FieldDisplayName, Reason: "must not contain @"}
	}
	return nil
}
