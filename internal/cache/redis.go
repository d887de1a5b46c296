// Package cache keeps each tenant's active system parameters in Redis so
// quote requests do not hit Mongo for the rate sheet every time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleetquote/internal/models"
)

const DefaultTTL = 10 * time.Minute

// RedisConfig holds the connection settings of a single Redis node.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient connects to a single Redis node and pings it.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("no Redis address provided")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// ParametersCache stores the active parameters of a tenant.
type ParametersCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context, tenantID string) (p *models.SystemParameters, ok bool, err error)
	Set(ctx context.Context, p *models.SystemParameters) error
	Invalidate(ctx context.Context, tenantID string) error
}

// RedisParametersCache is a ParametersCache on Redis. Entries are BSON so
// ObjectIDs and timestamps survive unchanged.
type RedisParametersCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewParametersCache(client redis.Cmdable, ttl time.Duration) *RedisParametersCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisParametersCache{client: client, ttl: ttl}
}

func parametersKey(tenantID string) string {
	return fmt.Sprintf("params:active:%s", tenantID)
}

func (c *RedisParametersCache) Get(ctx context.Context, tenantID string) (*models.SystemParameters, bool, error) {
	raw, err := c.client.Get(ctx, parametersKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached parameters: %w", err)
	}

	var p models.SystemParameters
	if err := bson.Unmarshal(raw, &p); err != nil {
		// A corrupt entry behaves as a miss and is replaced on the next Set.
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *RedisParametersCache) Set(ctx context.Context, p *models.SystemParameters) error {
	raw, err := bson.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	if err := c.client.Set(ctx, parametersKey(p.TenantID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache parameters: %w", err)
	}
	return nil
}

func (c *RedisParametersCache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.client.Del(ctx, parametersKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate parameters: %w", err)
	}
	return nil
}

// Nop is a ParametersCache that never stores anything. It is used when no
// Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.SystemParameters, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, *models.SystemParameters) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
