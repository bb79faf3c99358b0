// Package main runs the forum backend HTTP server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	app "github.com/trapziu/forum/internal/app"
	"github.com/trapziu/forum/internal/app/httpapi"
	"github.com/trapziu/forum/internal/app/storage/postgres"
	"github.com/trapziu/forum/internal/auth"
	"github.com/trapziu/forum/internal/config"
	"github.com/trapziu/forum/internal/metrics"
	"github.com/trapziu/forum/internal/middleware"
	"github.com/trapziu/forum/internal/sessions"
	"github.com/trapziu/forum/pkg/logger"
)

func main() {
	// .env is optional; the environment wins over it either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("component", "server")

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to initialise storage")
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	sessionStore, redisClient := buildSessions(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	application, err := app.New(stores, log.WithField("component", "app"))
	if err != nil {
		log.WithError(err).Error("failed to build application")
		os.Exit(1)
	}

	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)
	authenticator := middleware.NewAuthenticator(issuer, sessionStore, log.WithField("component", "auth"))

	router := httpapi.NewRouter(httpapi.Config{
		App:           application,
		Tokens:        issuer,
		Sessions:      sessionStore,
		Authenticator: authenticator,
		Location:      cfg.Location(),
		Log:           log.WithField("component", "httpapi"),
	})

	m := metrics.New("forum")
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.Use(middleware.LoggingMiddleware(log.WithField("component", "http")))
	router.Use(middleware.MetricsMiddleware(m))

	cors := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	limiter := middleware.NewRateLimiter(float64(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, log.WithField("component", "ratelimit"))
	handler := cors.Handler(limiter.Handler(router))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("failed to start application")
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("forum backend listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application stop error")
	}
	log.Info("forum backend stopped")
}

// buildStores selects PostgreSQL when a DSN is configured and falls back to
// the in-memory store otherwise. The returned *sql.DB is nil for in-memory.
func buildStores(cfg *config.Config, log *logger.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Database.DSN == "" {
		log.Info("no DATABASE_URL set, using in-memory storage")
		return app.Stores{}, nil, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.EnsureSchema(pingCtx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("ensure schema: %w", err)
	}

	store := postgres.New(db)
	log.Info("using PostgreSQL storage")
	return app.Stores{
		Users:     store,
		Relations: store,
		Posts:     store,
		Likes:     store,
		Comments:  store,
		History:   store,
	}, db, nil
}

// buildSessions selects Redis when an address is configured. The returned
// client is nil for the in-memory store.
func buildSessions(cfg *config.Config, log *logger.Logger) (sessions.Store, *redis.Client) {
	if cfg.Redis.Addr == "" {
		log.Info("no REDIS_ADDR set, using in-memory sessions")
		return sessions.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.WithField("addr", cfg.Redis.Addr).Info("using Redis sessions")
	return sessions.NewRedisStore(client), client
}
