package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const version = "1.0.0"

// Checker serves liveness and readiness probes. Redis is optional;
// the service degrades to in-memory batch storage without it.
type Checker struct {
	db          *gorm.DB
	redis       *redis.Client
	ready       bool
	readyMu     sync.RWMutex
	startupTime time.Time
}

func NewChecker(db *gorm.DB, redis *redis.Client) *Checker {
	return &Checker{
		db:          db,
		redis:       redis,
		startupTime: time.Now(),
	}
}

func (c *Checker) SetReady(ready bool) {
	c.readyMu.Lock()
	defer c.readyMu.Unlock()
	c.ready = ready
}

func (c *Checker) IsReady() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready
}

// Check represents a single dependency probe.
type Check struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

type status struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Healthz answers the liveness probe.
func (c *Checker) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// Readyz answers the readiness probe with dependency checks.
func (c *Checker) Readyz(ctx *gin.Context) {
	if !c.IsReady() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"timestamp": time.Now().UTC(),
			"message":   "service is starting up",
		})
		return
	}
	c.respond(ctx, "ready")
}

// Health provides detailed dependency status.
func (c *Checker) Health(ctx *gin.Context) {
	c.respond(ctx, "healthy")
}

func (c *Checker) respond(ctx *gin.Context, okStatus string) {
	checks := map[string]Check{
		"database": c.checkDatabase(),
		"redis":    c.checkRedis(),
	}

	healthy := true
	for _, check := range checks {
		if check.Status != "healthy" {
			healthy = false
			break
		}
	}

	s := status{
		Status:    okStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(c.startupTime).Round(time.Second).String(),
		Version:   version,
		Checks:    checks,
	}

	if !healthy {
		s.Status = "degraded"
		ctx.JSON(http.StatusServiceUnavailable, s)
		return
	}
	ctx.JSON(http.StatusOK, s)
}

func (c *Checker) checkDatabase() Check {
	if c.db == nil {
		return Check{Status: "unhealthy", Message: "database not configured"}
	}

	start := time.Now()
	sqlDB, err := c.db.DB()
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}

	return Check{Status: "healthy", Duration: time.Since(start).String()}
}

func (c *Checker) checkRedis() Check {
	if c.redis == nil {
		return Check{Status: "healthy", Message: "redis not configured (optional)"}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}

	return Check{Status: "healthy", Duration: time.Since(start).String()}
}

// RegisterRoutes mounts the probe endpoints on the router root.
func (c *Checker) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", c.Healthz)
	r.GET("/readyz", c.Readyz)
	r.GET("/health", c.Health)
}
