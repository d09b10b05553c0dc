package services

import (
	"context"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/locks"
	"github.com/aurasflow/backend/internal/models"
	"github.com/aurasflow/backend/internal/vault"
	"github.com/aurasflow/backend/internal/websocket"
)

// BatchStore is the injected per-session store for generated content batches.
// One batch per session key, overwritten by the next generation call, never
// part of durable project history. See the session package for implementations.
type BatchStore interface {
	Put(ctx context.Context, sessionKey string, items []models.GeneratedItem) error
	Get(ctx context.Context, sessionKey string) ([]models.GeneratedItem, error)
	Clear(ctx context.Context, sessionKey string) error
}

// Container holds all service instances
type Container struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	WSHub   *websocket.Hub
	Batches BatchStore
	Locks   *locks.Manager
	Secrets *vault.Cipher

	// Core Services
	Ledger    *LedgerService
	Project   *ProjectService
	Content   *ContentService
	Plan      *PlanService
	Dashboard *DashboardService
	User      *UserService
}

func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, wsHub *websocket.Hub, batches BatchStore) *Container {
	container := &Container{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient,
		WSHub:   wsHub,
		Batches: batches,
	}

	if redisClient != nil {
		container.Locks = locks.NewManager(redisClient)
	}

	if cfg != nil && cfg.EncryptionKey != "" {
		if cipher, err := vault.NewCipher(cfg.EncryptionKey); err == nil {
			container.Secrets = cipher
		}
	}

	container.Ledger = NewLedgerService(container)
	container.Project = NewProjectService(container)
	container.Content = NewContentService(container, StubContentGenerator{})
	container.Plan = NewPlanService(container, StubPlanItemGenerator{})
	container.Dashboard = NewDashboardService(container)
	container.User = NewUserService(container)

	return container
}
