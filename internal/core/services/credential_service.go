package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/SscSPs/wallet_game_backend/internal/utils"
)

type credentialService struct {
	BaseService
	bcryptCost int
	oracle     portssvc.IdentityOracle
}

// NewCredentialService wires bcrypt hashing and the external identity oracle.
func NewCredentialService(bcryptCost int, oracle portssvc.IdentityOracle) portssvc.CredentialSvcFacade {
	return &credentialService{bcryptCost: bcryptCost, oracle: oracle}
}

func (s *credentialService) HashPassword(ctx context.Context, plain string) (string, error) {
	hash, err := utils.HashPassword(plain, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *credentialService) VerifyPassword(ctx context.Context, plain string, hash string) bool {
	return utils.CheckPasswordHash(plain, hash)
}

func (s *credentialService) VerifyFederatedToken(ctx context.Context, idToken string) (*domain.FederatedIdentity, error) {
	if idToken == "" {
		return nil, apperrors.ErrInvalidFederatedToken
	}
	identity, err := s.oracle.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.LogDebug(ctx, "Federated token rejected", "reason", err.Error())
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidFederatedToken, err)
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", apperrors.ErrInvalidFederatedToken)
	}
	return identity, nil
}

func (s *credentialService) RevokeFederatedSessions(ctx context.Context, subject string) error {
	if err := s.oracle.RevokeRefreshTokens(ctx, subject); err != nil {
		return fmt.Errorf("%w: revoke federated sessions: %v", apperrors.ErrUpstream, err)
	}
	return nil
}
