package domain

import "time"

// Identity is the verified subject of an access token.
type Identity struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// FederatedIdentity is what the identity provider vouches for after verifying an ID token.
type FederatedIdentity struct {
	Subject     string
	Email       string
	DisplayName string
}

// IssuedToken is a signed token together with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Session is the result of a successful login: a fresh access token and the
// refresh token that now occupies the user's session slot.
type Session struct {
	AccessToken  IssuedToken
	RefreshToken IssuedToken
	User         *User
}
