package mapping

import (
	"database/sql"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"github.com/SscSPs/wallet_game_backend/internal/models"
)

// ToModelNewUser converts the insert fields to a model User without id or timestamps.
func ToModelNewUser(n domain.NewUser) models.User {
	return models.User{
		Email:            n.Email,
		PasswordHash:     toNullString(n.PasswordHash),
		DisplayName:      sql.NullString{String: n.DisplayName, Valid: n.DisplayName != ""},
		Balance:          n.Balance,
		XP:               n.XP,
		FederatedSubject: toNullString(n.FederatedSubject),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:           m.UserID,
		Email:            m.Email,
		PasswordHash:     fromNullString(m.PasswordHash),
		DisplayName:      m.DisplayName.String,
		Balance:          m.Balance,
		XP:               m.XP,
		RefreshToken:     fromNullString(m.RefreshToken),
		FederatedSubject: fromNullString(m.FederatedSubject),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
