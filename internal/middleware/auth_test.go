package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	"github.com/SscSPs/wallet_game_backend/internal/core/services"
	"github.com/SscSPs/wallet_game_backend/internal/middleware"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func authTestConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:          "gate-access-secret",
		AccessTokenExpiryDuration:  time.Hour,
		RefreshTokenSecret:         "gate-refresh-secret",
		RefreshTokenExpiryDuration: 24 * time.Hour,
		JWTIssuer:                  "wallet-test",
	}
}

// tamperLastChar swaps the last character for one whose high bits differ,
// so the decoded signature changes even with lenient base64 decoding.
func tamperLastChar(token string) string {
	last := token[len(token)-1]
	idx := strings.IndexByte(base64URLAlphabet, last)
	return token[:len(token)-1] + string(base64URLAlphabet[(idx+16)%64])
}

func newGatedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(services.NewTokenService(cfg)), func(c *gin.Context) {
		identity, ok := middleware.GetIdentityFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, identity)
	})
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := authTestConfig()
	router := newGatedRouter(cfg)
	tokens := services.NewTokenService(cfg)
	user := &domain.User{UserID: 42, Email: "a@x.com"}

	access, err := tokens.GenerateAccessToken(context.Background(), user)
	require.NoError(t, err)
	refresh, err := tokens.GenerateRefreshToken(context.Background(), user)
	require.NoError(t, err)

	expiredCfg := authTestConfig()
	expiredCfg.AccessTokenExpiryDuration = -time.Minute
	expired, err := services.NewTokenService(expiredCfg).GenerateAccessToken(context.Background(), user)
	require.NoError(t, err)

	forgedCfg := authTestConfig()
	forgedCfg.AccessTokenSecret = "someone-elses-secret"
	forged, err := services.NewTokenService(forgedCfg).GenerateAccessToken(context.Background(), user)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access.Value, http.StatusUnauthorized},
		{"bearer without token", "Bearer ", http.StatusUnauthorized},
		{"garbled token", "Bearer not-a-jwt", http.StatusForbidden},
		{"tampered signature", "Bearer " + tamperLastChar(access.Value), http.StatusForbidden},
		{"expired", "Bearer " + expired.Value, http.StatusForbidden},
		{"forged secret", "Bearer " + forged.Value, http.StatusForbidden},
		{"refresh token used as access token", "Bearer " + refresh.Value, http.StatusForbidden},
		{"valid", "Bearer " + access.Value, http.StatusOK},
		{"lowercase scheme", "bearer " + access.Value, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(router, tc.header)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_ForwardsClaims(t *testing.T) {
	cfg := authTestConfig()
	router := newGatedRouter(cfg)
	access, err := services.NewTokenService(cfg).GenerateAccessToken(context.Background(), &domain.User{UserID: 42, Email: "a@x.com"})
	require.NoError(t, err)

	w := doGet(router, "Bearer "+access.Value)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.Identity{UserID: 42, Email: "a@x.com"}, got)
}

func TestAuthMiddleware_ExpiredMessage(t *testing.T) {
	cfg := authTestConfig()
	cfg.AccessTokenExpiryDuration = -time.Minute
	expired, err := services.NewTokenService(cfg).GenerateAccessToken(context.Background(), &domain.User{UserID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	w := doGet(newGatedRouter(authTestConfig()), "Bearer "+expired.Value)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Token has expired"}`, w.Body.String())
}
