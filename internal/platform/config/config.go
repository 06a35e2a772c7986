package config

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for DB_DRIVER.
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Supported values for IDENTITY_PROVIDER.
const (
	IdentityProviderDisabled = "disabled"
	IdentityProviderGoogle   = "google"
	IdentityProviderFirebase = "firebase"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	DBDriver      string
	DatabaseURL   string
	SQLiteDSN     string
	EnableDBCheck bool
	// MigrationsPath is a golang-migrate source URL, e.g. file://migrations
	MigrationsPath string

	// Access Token Config
	AccessTokenSecret         string
	AccessTokenExpiryDuration time.Duration
	JWTIssuer                 string

	// Refresh Token Config
	RefreshTokenSecret         string
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	CookieSecure               bool
	CookieSameSite             http.SameSite
	// RefreshVerifySignature makes /auth/refresh also check signature and expiry
	// of the presented token, not only that it matches the stored value.
	RefreshVerifySignature bool

	PasswordMinLength int
	BcryptCost        int

	// External identity provider
	IdentityProvider        string
	GoogleClientID          string
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	CORSAllowedOrigins []string

	LoginRateLimit    string
	RateLimitRedisURL string

	SentryDSN     string
	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_DSN", "file:wallet.db?cache=shared")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE", "15m")
	v.SetDefault("JWT_ISSUER", "wallet-game-backend")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_EXPIRE", "7d")
	v.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "refreshToken")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("COOKIE_SAMESITE", "none")
	v.SetDefault("REFRESH_VERIFY_SIGNATURE", false)
	v.SetDefault("PASSWORD_MIN_LENGTH", 6)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("IDENTITY_PROVIDER", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5000,http://localhost:5173")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("RATE_LIMIT_REDIS_URL", "")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("POSTHOG_API_KEY", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = v.GetString("MIGRATIONS_PATH")

	cfg.DBDriver = strings.ToLower(v.GetString("DB_DRIVER"))
	switch cfg.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	cfg.SQLiteDSN = v.GetString("SQLITE_DSN")
	if cfg.DBDriver == DBDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.AccessTokenSecret = v.GetString("ACCESS_TOKEN_SECRET")
	cfg.RefreshTokenSecret = v.GetString("REFRESH_TOKEN_SECRET")
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set in production")
		}
		log.Println("Warning: token secrets not set, using default insecure secrets. THIS IS NOT FOR PRODUCTION.")
		if cfg.AccessTokenSecret == "" {
			cfg.AccessTokenSecret = "default_insecure_access_secret_please_change_this"
		}
		if cfg.RefreshTokenSecret == "" {
			cfg.RefreshTokenSecret = "default_insecure_refresh_secret_please_change_this"
		}
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	cfg.AccessTokenExpiryDuration = durationOrDefault(v, "ACCESS_TOKEN_EXPIRE", 15*time.Minute)
	cfg.RefreshTokenExpiryDuration = durationOrDefault(v, "REFRESH_TOKEN_EXPIRE", 7*24*time.Hour)

	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "wallet-game-backend"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.RefreshTokenCookieName = v.GetString("REFRESH_TOKEN_COOKIE_NAME")
	if cfg.RefreshTokenCookieName == "" {
		cfg.RefreshTokenCookieName = "refreshToken"
	}
	cfg.CookieSecure = v.GetBool("COOKIE_SECURE")
	sameSite, err := ParseSameSite(v.GetString("COOKIE_SAMESITE"))
	if err != nil {
		return nil, err
	}
	cfg.CookieSameSite = sameSite
	if sameSite == http.SameSiteNoneMode && !cfg.CookieSecure {
		log.Println("Warning: COOKIE_SAMESITE=none without COOKIE_SECURE, browsers will reject the refresh cookie.")
	}
	cfg.RefreshVerifySignature = v.GetBool("REFRESH_VERIFY_SIGNATURE")

	cfg.PasswordMinLength = v.GetInt("PASSWORD_MIN_LENGTH")
	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = 6
	}
	cfg.BcryptCost = v.GetInt("BCRYPT_COST")

	cfg.GoogleClientID = v.GetString("GOOGLE_CLIENT_ID")
	cfg.FirebaseProjectID = v.GetString("FIREBASE_PROJECT_ID")
	cfg.FirebaseCredentialsFile = v.GetString("FIREBASE_CREDENTIALS_FILE")
	cfg.IdentityProvider = strings.ToLower(v.GetString("IDENTITY_PROVIDER"))
	if cfg.IdentityProvider == "" {
		cfg.IdentityProvider = inferIdentityProvider(cfg)
	}
	switch cfg.IdentityProvider {
	case IdentityProviderDisabled:
		log.Println("Warning: no identity provider configured. Google login will not function.")
	case IdentityProviderGoogle:
		if cfg.GoogleClientID == "" {
			return nil, fmt.Errorf("IDENTITY_PROVIDER=google requires GOOGLE_CLIENT_ID")
		}
	case IdentityProviderFirebase:
		if cfg.FirebaseProjectID == "" {
			return nil, fmt.Errorf("IDENTITY_PROVIDER=firebase requires FIREBASE_PROJECT_ID")
		}
	default:
		return nil, fmt.Errorf("unsupported IDENTITY_PROVIDER %q", cfg.IdentityProvider)
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.LoginRateLimit = v.GetString("LOGIN_RATE_LIMIT")
	cfg.RateLimitRedisURL = v.GetString("RATE_LIMIT_REDIS_URL")
	cfg.SentryDSN = v.GetString("SENTRY_DSN")
	cfg.PosthogAPIKey = v.GetString("POSTHOG_API_KEY")

	return cfg, nil
}

func inferIdentityProvider(cfg *Config) string {
	switch {
	case cfg.FirebaseProjectID != "":
		return IdentityProviderFirebase
	case cfg.GoogleClientID != "":
		return IdentityProviderGoogle
	default:
		return IdentityProviderDisabled
	}
}

func durationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

// ParseDuration accepts Go durations ("15m", "1h30m"), a day suffix ("7d")
// and a bare number of seconds ("900").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// ParseSameSite maps strict|lax|none (case-insensitive) to http.SameSite.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	case "", "default":
		return http.SameSiteDefaultMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("unsupported COOKIE_SAMESITE %q", s)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
