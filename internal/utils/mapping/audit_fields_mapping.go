package mapping

import (
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"github.com/SscSPs/wallet_game_backend/internal/models"
)

// ToDomainAuditFields converts a model AuditFields to a domain AuditFields
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}
