package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_game_backend/internal/core/ports/repositories"
	"github.com/SscSPs/wallet_game_backend/internal/models"
	"github.com/SscSPs/wallet_game_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	usersTable = "users"

	selectUserFields = `
		id, email, password, display_name, balance, xp,
		refresh_token, federated_subject, created_at, updated_at
	`

	insertUserQuery = `
		INSERT INTO ` + usersTable + ` (
			email, password, display_name, balance, xp, federated_subject
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + selectUserFields

	findUserByIDQuery = `
		SELECT ` + selectUserFields + `
		FROM ` + usersTable + `
		WHERE id = $1
	`

	findUserByEmailQuery = `
		SELECT ` + selectUserFields + `
		FROM ` + usersTable + `
		WHERE email = $1
	`

	findUserByRefreshTokenQuery = `
		SELECT ` + selectUserFields + `
		FROM ` + usersTable + `
		WHERE refresh_token = $1
		LIMIT 1
	`

	setRefreshTokenQuery = `
		UPDATE ` + usersTable + `
		SET refresh_token = $1, updated_at = NOW()
		WHERE id = $2
	`
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (*domain.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.PasswordHash,
		&m.DisplayName,
		&m.Balance,
		&m.XP,
		&m.RefreshToken,
		&m.FederatedSubject,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, query string, what string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", what, err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.findOne(ctx, findUserByIDQuery, "id", userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, findUserByEmailQuery, "email", email)
}

func (r *PgxUserRepository) FindUserByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, findUserByRefreshTokenQuery, "refresh token", token)
}

func (r *PgxUserRepository) InsertUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	m := mapping.ToModelNewUser(user)
	inserted, err := scanUser(r.db.QueryRow(ctx, insertUserQuery,
		m.Email,
		m.PasswordHash,
		m.DisplayName,
		m.Balance,
		m.XP,
		m.FederatedSubject,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("user with email %s: %w", user.Email, apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return inserted, nil
}

func (r *PgxUserRepository) SetRefreshToken(ctx context.Context, userID int64, token *string) error {
	cmdTag, err := r.db.Exec(ctx, setRefreshTokenQuery, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}
