package identity

import (
	"context"
	"errors"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
)

// ErrProviderDisabled is returned by DisabledOracle for every call.
var ErrProviderDisabled = errors.New("identity provider is not configured")

// DisabledOracle rejects every federated token.
type DisabledOracle struct{}

func (DisabledOracle) VerifyIDToken(ctx context.Context, idToken string) (*domain.FederatedIdentity, error) {
	return nil, ErrProviderDisabled
}

func (DisabledOracle) RevokeRefreshTokens(ctx context.Context, subject string) error {
	return ErrProviderDisabled
}
