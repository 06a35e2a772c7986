package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_game_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AuthOptions tunes the session flows.
type AuthOptions struct {
	PasswordMinLength int
	// VerifyRefreshSignature additionally checks signature and expiry of the
	// presented refresh token. By default a matching stored row is enough.
	VerifyRefreshSignature bool
}

type authService struct {
	BaseService
	userRepo    portsrepo.UserRepositoryFacade
	tokens      portssvc.TokenSvcFacade
	credentials portssvc.CredentialSvcFacade
	validate    *validator.Validate
	opts        AuthOptions

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates the session manager on top of the user store.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, tokens portssvc.TokenSvcFacade, credentials portssvc.CredentialSvcFacade, opts AuthOptions) portssvc.AuthSvcFacade {
	if opts.PasswordMinLength <= 0 {
		opts.PasswordMinLength = 6
	}
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		credentials: credentials,
		validate:    validator.New(),
		opts:        opts,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.NewFieldError("email", "Invalid email format")
	}
	if utf8.RuneCountInString(password) < s.opts.PasswordMinLength {
		return nil, apperrors.NewFieldError("password", fmt.Sprintf("Password must be at least %d characters", s.opts.PasswordMinLength))
	}
	if len(password) > maxPasswordBytes {
		return nil, apperrors.NewFieldError("password", fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := s.credentials.HashPassword(ctx, password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, err
	}

	user, err := s.userRepo.InsertUser(ctx, domain.NewUser{
		Email:        email,
		PasswordHash: &hash,
		Balance:      decimal.Zero,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "Registration for taken email", slog.String("email", email))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to insert user", slog.String("email", email))
		return nil, upstream(err)
	}

	s.LogInfo(ctx, "User registered", slog.Int64("user_id", user.UserID))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.compareDecoy(ctx, password)
			return nil, apperrors.ErrInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, upstream(err)
	}
	// Federation-only accounts have no password to compare against.
	if user.IsFederated() {
		s.compareDecoy(ctx, password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.credentials.VerifyPassword(ctx, password, *user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.startSession(ctx, user)
}

// compareDecoy spends one bcrypt comparison so failed logins take the same
// time whether or not the email has a password.
func (s *authService) compareDecoy(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.credentials.HashPassword(ctx, "decoy-password")
		if err != nil {
			s.LogError(ctx, err, "Failed to prepare decoy hash")
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash != "" {
		_ = s.credentials.VerifyPassword(ctx, password, s.decoyHash)
	}
}

func (s *authService) GoogleLogin(ctx context.Context, idToken string) (*domain.Session, error) {
	identity, err := s.credentials.VerifyFederatedToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.createFederatedUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		s.LogError(ctx, err, "Failed to look up user for federated login")
		return nil, upstream(err)
	}
	return s.startSession(ctx, user)
}

func (s *authService) createFederatedUser(ctx context.Context, identity *domain.FederatedIdentity) (*domain.User, error) {
	displayName := identity.DisplayName
	if displayName == "" {
		displayName = identity.Email
	}
	var subject *string
	if identity.Subject != "" {
		subject = &identity.Subject
	}
	user, err := s.userRepo.InsertUser(ctx, domain.NewUser{
		Email:            identity.Email,
		DisplayName:      displayName,
		Balance:          decimal.Zero,
		XP:               0,
		FederatedSubject: subject,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create federated user", slog.String("email", identity.Email))
		return nil, upstream(err)
	}
	s.LogInfo(ctx, "Federated user created", slog.Int64("user_id", user.UserID))
	return user, nil
}

// startSession issues both tokens and overwrites the stored refresh token,
// which invalidates whatever session the user had before.
func (s *authService) startSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	access, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to issue access token", slog.Int64("user_id", user.UserID))
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to issue refresh token", slog.Int64("user_id", user.UserID))
		return nil, err
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.UserID, &refresh.Value); err != nil {
		s.LogError(ctx, err, "Failed to store refresh token", slog.Int64("user_id", user.UserID))
		return nil, upstream(err)
	}
	user.RefreshToken = &refresh.Value
	return &domain.Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.IssuedToken, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrAccessDenied
	}
	user, err := s.findByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if s.opts.VerifyRefreshSignature {
		if _, err := s.tokens.ParseRefreshToken(ctx, refreshToken); err != nil {
			s.LogWarn(ctx, "Stored refresh token failed verification", slog.Int64("user_id", user.UserID), slog.String("reason", err.Error()))
			return nil, apperrors.ErrInvalidRefreshToken
		}
	}
	access, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to issue access token", slog.Int64("user_id", user.UserID))
		return nil, err
	}
	return &access, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.ErrNoTokenProvided
	}
	user, err := s.findByRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if user.IsFederated() {
		s.revokeFederated(ctx, user)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.UserID, nil); err != nil {
		s.LogError(ctx, err, "Failed to clear refresh token", slog.Int64("user_id", user.UserID))
		return upstream(err)
	}
	s.LogInfo(ctx, "User logged out", slog.Int64("user_id", user.UserID))
	return nil
}

// revokeFederated is best effort: failures are logged and logout proceeds.
func (s *authService) revokeFederated(ctx context.Context, user *domain.User) {
	if user.FederatedSubject == nil || *user.FederatedSubject == "" {
		s.LogWarn(ctx, "Federated user has no provider subject, skipping revocation", slog.Int64("user_id", user.UserID))
		return
	}
	if err := s.credentials.RevokeFederatedSessions(ctx, *user.FederatedSubject); err != nil {
		s.LogError(ctx, err, "Error revoking federated sessions", slog.Int64("user_id", user.UserID))
	}
}

func (s *authService) findByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		s.LogError(ctx, err, "Failed to look up refresh token")
		return nil, upstream(err)
	}
	return user, nil
}

func upstream(err error) error {
	if errors.Is(err, apperrors.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
}
