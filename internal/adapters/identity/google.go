package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"google.golang.org/api/idtoken"
)

type payloadValidator func(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)

// GoogleOracle verifies Google Sign-In ID tokens issued for a single OAuth client.
type GoogleOracle struct {
	clientID string
	validate payloadValidator
}

func NewGoogleOracle(clientID string) *GoogleOracle {
	return &GoogleOracle{clientID: clientID, validate: idtoken.Validate}
}

func (o *GoogleOracle) VerifyIDToken(ctx context.Context, idToken string) (*domain.FederatedIdentity, error) {
	if o.clientID == "" {
		return nil, errors.New("google client ID is not configured")
	}
	payload, err := o.validate(ctx, idToken, o.clientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &domain.FederatedIdentity{Subject: payload.Subject, Email: email, DisplayName: name}, nil
}

// RevokeRefreshTokens is a no-op: Google offers no per-subject session
// revocation to relying parties, the ID token simply expires.
func (o *GoogleOracle) RevokeRefreshTokens(ctx context.Context, subject string) error {
	return nil
}
