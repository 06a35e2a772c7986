package services

import (
	"context"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
)

// TokenSvcFacade defines the interface for issuing and verifying access and refresh tokens.
type TokenSvcFacade interface {
	// GenerateAccessToken signs a short-lived access token for the user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (domain.IssuedToken, error)
	// GenerateRefreshToken signs a refresh token with the refresh secret and lifetime.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (domain.IssuedToken, error)
	// ParseAccessToken verifies signature and expiry with the access secret.
	ParseAccessToken(ctx context.Context, token string) (*domain.Identity, error)
	// ParseRefreshToken verifies signature and expiry with the refresh secret.
	ParseRefreshToken(ctx context.Context, token string) (*domain.Identity, error)
}

// IdentityOracle is the external federated-login provider.
type IdentityOracle interface {
	// VerifyIDToken checks the provider-issued ID token and returns the identity it vouches for.
	VerifyIDToken(ctx context.Context, idToken string) (*domain.FederatedIdentity, error)
	// RevokeRefreshTokens invalidates the provider-side sessions of subject.
	RevokeRefreshTokens(ctx context.Context, subject string) error
}

// CredentialSvcFacade verifies local passwords and federated ID tokens.
type CredentialSvcFacade interface {
	HashPassword(ctx context.Context, plain string) (string, error)
	VerifyPassword(ctx context.Context, plain, hash string) bool
	VerifyFederatedToken(ctx context.Context, idToken string) (*domain.FederatedIdentity, error)
	RevokeFederatedSessions(ctx context.Context, subject string) error
}

// AuthSvcFacade orchestrates the session lifecycle.
type AuthSvcFacade interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	GoogleLogin(ctx context.Context, idToken string) (*domain.Session, error)
	// Refresh exchanges the stored refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*domain.IssuedToken, error)
	Logout(ctx context.Context, refreshToken string) error
}
