package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/wallet_game_backend/internal/adapters/identity"
	portsrepo "github.com/SscSPs/wallet_game_backend/internal/core/ports/repositories"
	"github.com/SscSPs/wallet_game_backend/internal/core/services"
	"github.com/SscSPs/wallet_game_backend/internal/handlers"
	"github.com/SscSPs/wallet_game_backend/internal/middleware"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
	"github.com/SscSPs/wallet_game_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/wallet_game_backend/internal/repositories/database/sqlite"
	"github.com/SscSPs/wallet_game_backend/internal/utils"
	"github.com/SscSPs/wallet_game_backend/pkg/database"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Wallet Game Backend API
// @version 1.0
// @description Authentication and session service for the wallet game.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeDB, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize user store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeDB()

	oracle, closeOracle, err := identity.NewOracle(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize identity provider", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeOracle()

	if cfg.SentryDSN != "" {
		environment := "development"
		if cfg.IsProduction {
			environment = "production"
		}
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: environment,
		}); err != nil {
			logger.Error("Sentry init failed", slog.String("error", err.Error()))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	loginLimiter, closeLimiter, err := newLoginLimiter(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeLimiter()

	serviceContainer := services.NewServiceContainer(cfg, repos, oracle)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, error reporting, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, loginLimiter, posthogClient)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}
}

// openRepositories connects the configured user store and brings its schema up to date.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.DBDriver {
	case config.DBDriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLiteDSN)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		if err := sqlite.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite user store ready", slog.String("dsn", cfg.SQLiteDSN))
		return sqlite.NewRepositoryProvider(db), func() { _ = db.Close() }, nil
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.")
		if err := runMigrations(cfg, logger); err != nil {
			database.ClosePgxPool(dbPool)
			return portsrepo.RepositoryProvider{}, nil, err
		}
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
	}
}

// runMigrations applies the postgres migrations over a temporary database/sql connection.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// newLoginLimiter keeps counters in redis when RATE_LIMIT_REDIS_URL is set, in memory otherwise.
func newLoginLimiter(cfg *config.Config, logger *slog.Logger) (*limiter.Limiter, func(), error) {
	var rdb *redis.Client
	closeFn := func() {}
	if cfg.RateLimitRedisURL != "" {
		var err error
		rdb, err = middleware.NewRedisClient(cfg.RateLimitRedisURL)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = func() { _ = rdb.Close() }
		logger.Info("Using redis rate limit store")
	}
	l, err := middleware.NewLimiter(cfg.LoginRateLimit, rdb)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return l, closeFn, nil
}
