package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// AccessTokenParser verifies an access token and returns the identity it carries.
type AccessTokenParser interface {
	ParseAccessToken(ctx context.Context, token string) (*domain.Identity, error)
}

// AuthMiddleware creates a Gin middleware handler that validates bearer access tokens.
// A missing or malformed Authorization header is answered with 401; a token that
// fails verification with 403. It never touches the store.
func AuthMiddleware(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Warn("Authorization header missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.NewUnauthorizedError("Authorization header must be Bearer {token}"))
			return
		}

		identity, err := parser.ParseAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Invalid access token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				msg = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, apperrors.NewForbiddenError(msg))
			return
		}

		// Add user ID to the logger and store both in the request context
		enrichedLogger := logger.With(slog.Int64("user_id", identity.UserID))
		ctx := WithIdentity(c.Request.Context(), *identity)
		ctx = WithLogger(ctx, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
