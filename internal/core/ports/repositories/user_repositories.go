package repositories

import (
	"context"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
)

// UserReader defines read operations for user data.
// Lookups return apperrors.ErrNotFound when no row matches.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID int64) (*domain.User, error)

	// FindUserByEmail retrieves the user registered with the given email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByRefreshToken retrieves the user whose stored refresh token equals token exactly.
	FindUserByRefreshToken(ctx context.Context, token string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// InsertUser persists a new user and returns the stored row.
	// A taken email yields apperrors.ErrDuplicate.
	InsertUser(ctx context.Context, user domain.NewUser) (*domain.User, error)

	// SetRefreshToken overwrites the user's session slot; a nil token signs the user out.
	SetRefreshToken(ctx context.Context, userID int64, token *string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
