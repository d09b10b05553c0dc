package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aurasflow/backend/internal/auth"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/models"
)

const redisPingTimeout = 5 * time.Second

func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logger.Info().Msg("database connected")
	return db, nil
}

// Migrate applies the GORM schema. Versioned SQL migrations live in
// internal/migrations; AutoMigrate covers development setups.
func Migrate(db *gorm.DB) error {
	logger.Info().Msg("running schema migration")

	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.SocialLink{},
		&models.MarketingPlan{},
		&models.PlanItem{},
		&models.CreditTransaction{},
		&auth.RefreshToken{},
	)
	if err != nil {
		return err
	}

	logger.Info().Msg("schema migration complete")
	return nil
}

// ConnectRedis parses the URL and pings the server. A nil client is
// returned on failure; callers degrade to in-memory fallbacks.
func ConnectRedis(redisURL string) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid Redis URL")
		return nil
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis connection failed")
		client.Close()
		return nil
	}

	logger.Info().Msg("Redis connected")
	return client
}
