// Package identity holds the external identity providers behind the federated login.
package identity

import (
	"context"
	"fmt"
	"log/slog"

	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
)

// NewOracle selects the identity provider configured by cfg. The returned
// cleanup func is never nil.
func NewOracle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portssvc.IdentityOracle, func(), error) {
	switch cfg.IdentityProvider {
	case config.IdentityProviderGoogle:
		logger.Info("Using Google identity provider")
		return NewGoogleOracle(cfg.GoogleClientID), func() {}, nil
	case config.IdentityProviderFirebase:
		oracle, err := NewFirebaseOracle(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile, logger)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("Using Firebase identity provider", slog.String("project_id", cfg.FirebaseProjectID))
		return oracle, oracle.Close, nil
	case config.IdentityProviderDisabled:
		logger.Warn("Identity provider disabled, federated login will be rejected")
		return DisabledOracle{}, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported identity provider %q", cfg.IdentityProvider)
	}
}

var (
	_ portssvc.IdentityOracle = (*GoogleOracle)(nil)
	_ portssvc.IdentityOracle = (*FirebaseOracle)(nil)
	_ portssvc.IdentityOracle = DisabledOracle{}
)
