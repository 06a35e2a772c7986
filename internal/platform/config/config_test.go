package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DBDriverPostgres, cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiryDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiryDuration)
	assert.Equal(t, "refreshToken", cfg.RefreshTokenCookieName)
	assert.Equal(t, http.SameSiteNoneMode, cfg.CookieSameSite)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.RefreshVerifySignature)
	assert.Equal(t, 6, cfg.PasswordMinLength)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, IdentityProviderDisabled, cfg.IdentityProvider)
	assert.Equal(t, []string{"http://localhost:5000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "5-M", cfg.LoginRateLimit)
	assert.NotEqual(t, cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"DB_DRIVER":            "SQLite",
		"ACCESS_TOKEN_SECRET":  "a",
		"REFRESH_TOKEN_SECRET": "b",
		"ACCESS_TOKEN_EXPIRE":  "900",
		"REFRESH_TOKEN_EXPIRE": "1d",
		"COOKIE_SAMESITE":      "Strict",
		"FIREBASE_PROJECT_ID":  "proj",
		"CORS_ALLOWED_ORIGINS": " https://game.example , ,https://admin.example",
	}))
	require.NoError(t, err)

	assert.Equal(t, DBDriverSQLite, cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiryDuration)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenExpiryDuration)
	assert.Equal(t, http.SameSiteStrictMode, cfg.CookieSameSite)
	assert.Equal(t, IdentityProviderFirebase, cfg.IdentityProvider)
	assert.Equal(t, []string{"https://game.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_InvalidDurationFallsBack(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{"ACCESS_TOKEN_EXPIRE": "soon"}))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiryDuration)
}

func TestFromViper_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		values map[string]any
	}{
		{"unsupported driver", map[string]any{"DB_DRIVER": "mysql"}},
		{"equal secrets", map[string]any{"ACCESS_TOKEN_SECRET": "same", "REFRESH_TOKEN_SECRET": "same"}},
		{"production without secrets", map[string]any{"IS_PRODUCTION": true}},
		{"google without client id", map[string]any{"IDENTITY_PROVIDER": "google"}},
		{"firebase without project", map[string]any{"IDENTITY_PROVIDER": "firebase"}},
		{"unknown provider", map[string]any{"IDENTITY_PROVIDER": "okta"}},
		{"bad samesite", map[string]any{"COOKIE_SAMESITE": "sometimes"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fromViper(newTestViper(tc.values))
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"3600", time.Hour},
	}
	for _, tc := range testCases {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "xd", "fortnight"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}
