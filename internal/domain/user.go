package domain

import "time"

// User is the domain model for registered accounts. The username doubles as
// the token subject, so it is unique and stable for the account's lifetime.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
