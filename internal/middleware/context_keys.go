package middleware

import (
	"context"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// identityCtxKey is the key used to store the authenticated identity.
const identityCtxKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying the verified identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// GetIdentityFromCtx retrieves the authenticated identity from a standard context.
func GetIdentityFromCtx(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(domain.Identity)
	return identity, ok
}

// GetIdentityFromContext retrieves the authenticated identity from the Gin context.
// It returns the identity and a boolean indicating if it was found.
func GetIdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	return GetIdentityFromCtx(c.Request.Context())
}
