package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_game_backend/internal/core/ports/repositories"
	"github.com/SscSPs/wallet_game_backend/internal/models"
	"github.com/SscSPs/wallet_game_backend/internal/utils/mapping"
	"github.com/uptrace/bun"
)

// BunUserRepository stores users in SQLite through bun.
type BunUserRepository struct {
	db *bun.DB
}

func newBunUserRepository(db *bun.DB) portsrepo.UserRepositoryFacade {
	return &BunUserRepository{db: db}
}

var _ portsrepo.UserRepositoryFacade = (*BunUserRepository)(nil)

// CreateSchema creates the users table when it does not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	_, err := db.NewCreateIndex().
		Model((*models.User)(nil)).
		Index("users_refresh_token_idx").
		Column("refresh_token").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create refresh token index: %w", err)
	}
	return nil
}

func (r *BunUserRepository) findOne(ctx context.Context, what string, where string, arg any) (*domain.User, error) {
	var m models.User
	err := r.db.NewSelect().Model(&m).Where(where, arg).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", what, err)
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (r *BunUserRepository) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.findOne(ctx, "id", "u.id = ?", userID)
}

func (r *BunUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", "u.email = ?", email)
}

func (r *BunUserRepository) FindUserByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, "refresh token", "u.refresh_token = ?", token)
}

func (r *BunUserRepository) InsertUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	m := mapping.ToModelNewUser(user)
	now := time.Now().UTC()
	m.CreatedAt = now
	m.LastUpdatedAt = now

	if _, err := r.db.NewInsert().Model(&m).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user with email %s: %w", user.Email, apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (r *BunUserRepository) SetRefreshToken(ctx context.Context, userID int64, token *string) error {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("refresh_token = ?", token).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %d not found: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

// isUniqueViolation matches the constraint error text shared by the sqlite drivers sqliteshim may pick.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
