package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrLockNotAcquired = errors.New("could not acquire lock")
	ErrLockExpired     = errors.New("lock expired")
	ErrLockNotOwned    = errors.New("lock not owned by this client")
)

// ResourceType represents different types of lockable resources
type ResourceType string

const (
	// ResourceLedger serializes a user's credit-spending operations across
	// processes. The database row lock remains the authoritative guard; this
	// keeps concurrent generation calls from piling up on it.
	ResourceLedger ResourceType = "ledger"

	// ResourcePlan guards plan lifecycle transitions.
	ResourcePlan ResourceType = "plan"
)

// Lock represents a distributed lock backed by Redis
type Lock struct {
	client    *redis.Client
	key       string
	token     string
	expiresAt time.Time
}

// Manager manages distributed locks
type Manager struct {
	redis     *redis.Client
	keyPrefix string
}

// NewManager creates a new lock manager
func NewManager(redisClient *redis.Client) *Manager {
	return &Manager{
		redis:     redisClient,
		keyPrefix: "aurasflow:lock:",
	}
}

func (m *Manager) lockKey(resourceType ResourceType, resourceID string) string {
	return fmt.Sprintf("%s%s:%s", m.keyPrefix, resourceType, resourceID)
}

// Acquire tries to acquire a lock
func (m *Manager) Acquire(ctx context.Context, resourceType ResourceType, resourceID string, ttl time.Duration) (*Lock, error) {
	key := m.lockKey(resourceType, resourceID)
	token := uuid.New().String()

	// SET NX EX for atomic lock acquisition
	ok, err := m.redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &Lock{
		client:    m.redis,
		key:       key,
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}, nil
}

// AcquireWithRetry tries to acquire a lock with retries and exponential backoff
func (m *Manager) AcquireWithRetry(ctx context.Context, resourceType ResourceType, resourceID string, ttl time.Duration, maxWait time.Duration) (*Lock, error) {
	deadline := time.Now().Add(maxWait)
	retryInterval := 50 * time.Millisecond
	maxRetryInterval := 500 * time.Millisecond

	for {
		lock, err := m.Acquire(ctx, resourceType, resourceID, ttl)
		if err == nil {
			return lock, nil
		}
		if err != ErrLockNotAcquired {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			retryInterval = retryInterval * 2
			if retryInterval > maxRetryInterval {
				retryInterval = maxRetryInterval
			}
		}
	}
}

// IsLocked checks if a resource is currently locked
func (m *Manager) IsLocked(ctx context.Context, resourceType ResourceType, resourceID string) (bool, error) {
	key := m.lockKey(resourceType, resourceID)
	exists, err := m.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Release releases the lock (only if we own it)
func (l *Lock) Release(ctx context.Context) error {
	// Atomically check ownership and delete so we never drop someone
	// else's lock after ours expired.
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token).Result()
	if err != nil {
		return err
	}
	if result.(int64) == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Extend extends the lock TTL (only if we own it)
func (l *Lock) Extend(ctx context.Context, ttl time.Duration) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token, int64(ttl/time.Millisecond)).Result()
	if err != nil {
		return err
	}
	if result.(int64) == 0 {
		return ErrLockExpired
	}
	l.expiresAt = time.Now().Add(ttl)
	return nil
}

// IsExpired checks if the lock has expired (locally)
func (l *Lock) IsExpired() bool {
	return time.Now().After(l.expiresAt)
}

// WithLock executes a function while holding a lock
func WithLock(ctx context.Context, manager *Manager, resourceType ResourceType, resourceID string, ttl time.Duration, fn func() error) error {
	lock, err := manager.Acquire(ctx, resourceType, resourceID, ttl)
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	return fn()
}
