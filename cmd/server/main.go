package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aurasflow/backend/internal/api"
	"github.com/aurasflow/backend/internal/auth"
	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/database"
	"github.com/aurasflow/backend/internal/jobs"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/migrations"
	"github.com/aurasflow/backend/internal/services"
	"github.com/aurasflow/backend/internal/session"
	"github.com/aurasflow/backend/internal/websocket"
)

const dbName = "aurasflow"

func main() {
	// Missing .env is fine; env vars are used directly.
	godotenv.Load()

	cfg := config.Load()

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty && !cfg.IsProduction(),
	})

	log := logger.Get()
	log.Info().
		Str("environment", cfg.Environment).
		Msg("starting aurasflow backend")

	validateConfig(cfg)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to unwrap sql.DB")
	}

	switch {
	case os.Getenv("RUN_MIGRATIONS") == "true":
		if err := migrations.Run(sqlDB, dbName); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	case !cfg.IsProduction():
		// Dev convenience; production schema changes go through cmd/migrate.
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("auto-migration failed")
		}
	default:
		version, dirty, err := migrations.Status(sqlDB, dbName)
		if err != nil {
			log.Warn().Err(err).Msg("migration status check failed")
		} else {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migration status")
		}
	}

	redisClient := database.ConnectRedis(cfg.RedisURL)

	// Batch store: Redis when available, in-memory otherwise.
	var batches services.BatchStore
	var sweeper jobs.BatchSweeper
	if redisClient != nil {
		batches = session.NewRedisStore(redisClient, cfg.BatchTTL)
	} else {
		memStore := session.NewMemoryStore(cfg.BatchTTL)
		batches = memStore
		sweeper = memStore
		log.Warn().Msg("Redis unavailable, using in-memory batch store")
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	authService := auth.NewService(db, cfg.JWTSecret)
	container := services.NewContainer(cfg, db, redisClient, wsHub, batches)

	scheduler := jobs.NewScheduler(authService, sweeper)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}

	server := api.NewServer(cfg, db, redisClient, wsHub, authService, container)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	server.SetReady(true)
	log.Info().Msg("service is ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("shutting down")
	server.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	scheduler.Stop()

	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close error")
		}
	}

	log.Info().Msg("shutdown complete")
}

func validateConfig(cfg *config.Config) {
	log := logger.Get()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		if cfg.IsProduction() {
			log.Fatal().Msg("JWT_SECRET must be set in production")
		}
		log.Warn().Msg("using default JWT_SECRET, not safe for production")
	}

	if cfg.EncryptionKey == "" {
		log.Warn().Msg("ENCRYPTION_KEY not set, social link credentials stored unencrypted")
	}
}
