package sqlite

import (
	portsrepo "github.com/SscSPs/wallet_game_backend/internal/core/ports/repositories"
	"github.com/uptrace/bun"
)

func NewRepositoryProvider(db *bun.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo: newBunUserRepository(db),
	}
}
