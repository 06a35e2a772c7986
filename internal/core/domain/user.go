package domain

import "github.com/shopspring/decimal"

// User represents a user of the application in the domain.
// PasswordHash is nil for accounts created through federated login.
// RefreshToken mirrors the single live session of the user; nil means signed out.
type User struct {
	UserID       int64           `json:"userId"`
	Email        string          `json:"email"`
	PasswordHash *string         `json:"-"`
	DisplayName  string          `json:"displayName"`
	Balance      decimal.Decimal `json:"balance"`
	XP           int64           `json:"xp"`
	RefreshToken *string         `json:"-"`
	// FederatedSubject is the identity provider's subject for federation-only accounts.
	FederatedSubject *string `json:"-"`
	AuditFields
}

// IsFederated reports whether the user can only sign in through the identity provider.
func (u *User) IsFederated() bool {
	return u.PasswordHash == nil || *u.PasswordHash == ""
}

// DisplayNameOrEmail returns the display name, falling back to the email.
func (u *User) DisplayNameOrEmail() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// NewUser holds the fields needed to insert a user row.
type NewUser struct {
	Email            string
	PasswordHash     *string
	DisplayName      string
	Balance          decimal.Decimal
	XP               int64
	FederatedSubject *string
}
