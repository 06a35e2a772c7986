package services

import (
	portsrepo "github.com/SscSPs/wallet_game_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, oracle portssvc.IdentityOracle) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)
	container.Credential = NewCredentialService(cfg.BcryptCost, oracle)
	container.Auth = NewAuthService(repos.UserRepo, container.Token, container.Credential, AuthOptions{
		PasswordMinLength:      cfg.PasswordMinLength,
		VerifyRefreshSignature: cfg.RefreshVerifySignature,
	})

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AuthSvcFacade       = (*authService)(nil)
	_ portssvc.TokenSvcFacade      = (*tokenService)(nil)
	_ portssvc.CredentialSvcFacade = (*credentialService)(nil)
)
