package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
	"github.com/SscSPs/wallet_game_backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// tokenService issues and verifies the two JWT kinds. Access and refresh
// tokens carry the same claims but are signed with different secrets.
type tokenService struct {
	BaseService
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (domain.IssuedToken, error) {
	return s.issue(user, s.cfg.AccessTokenSecret, s.cfg.AccessTokenExpiryDuration)
}

func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (domain.IssuedToken, error) {
	return s.issue(user, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiryDuration)
}

func (s *tokenService) ParseAccessToken(ctx context.Context, token string) (*domain.Identity, error) {
	return s.parse(ctx, token, s.cfg.AccessTokenSecret)
}

func (s *tokenService) ParseRefreshToken(ctx context.Context, token string) (*domain.Identity, error) {
	return s.parse(ctx, token, s.cfg.RefreshTokenSecret)
}

func (s *tokenService) issue(user *domain.User, secret string, ttl time.Duration) (domain.IssuedToken, error) {
	value, expiresAt, err := utils.GenerateJWT(user.UserID, user.Email, secret, ttl, s.cfg.JWTIssuer)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return domain.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

func (s *tokenService) parse(ctx context.Context, token string, secret string) (*domain.Identity, error) {
	claims, err := utils.ParseAndValidateJWT(token, secret, s.cfg.JWTIssuer)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		s.LogDebug(ctx, "Token rejected", "reason", err.Error())
		return nil, apperrors.ErrInvalidSignature
	}
	return &domain.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
