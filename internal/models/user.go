package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrencySymbol is used for new accounts that don't pick one.
const DefaultCurrencySymbol = "₹"

// User represents a registered user account.
// Every Person, Expense, Income and LedgerEntry is owned by exactly one user.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the name shown in the UI.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CurrencySymbol is prefixed to amounts in balance labels.
	CurrencySymbol string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with a generated ID and timestamps set to now.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:             uuid.New().String(),
		Email:          email,
		DisplayName:    displayName,
		PasswordHash:   passwordHash,
		CurrencySymbol: DefaultCurrencySymbol,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
