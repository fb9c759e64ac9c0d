package domain

import "time"

// Account is a registered Newsick user.
type Account struct {
	ID           string // ULID
	Email        string // normalised, unique
	DisplayName  string // public username, unique ignoring case
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
}
