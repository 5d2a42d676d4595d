// Package cache keeps read-mostly catalog records in Redis (cache-aside).
// A Catalog built without a client is disabled: reads miss and writes are no-ops.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"musicportal/internal/domain"
)

const (
	prefixResource  = "catalog:resource:"
	prefixEquipment = "catalog:equipment:"
)

// Config holds Redis connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type Catalog struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCatalog(client *redis.Client, ttl time.Duration, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{client: client, ttl: ttl, log: log}
}

func (c *Catalog) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Catalog) GetResource(ctx context.Context, id int64) (*domain.Resource, bool) {
	var r domain.Resource
	if !c.get(ctx, resourceKey(id), &r) {
		return nil, false
	}
	return &r, true
}

func (c *Catalog) SetResource(ctx context.Context, r *domain.Resource) {
	c.set(ctx, resourceKey(r.ID), r)
}

func (c *Catalog) InvalidateResource(ctx context.Context, id int64) {
	c.del(ctx, resourceKey(id))
}

func (c *Catalog) GetEquipment(ctx context.Context, id int64) (*domain.Equipment, bool) {
	var e domain.Equipment
	if !c.get(ctx, equipmentKey(id), &e) {
		return nil, false
	}
	return &e, true
}

func (c *Catalog) SetEquipment(ctx context.Context, e *domain.Equipment) {
	c.set(ctx, equipmentKey(e.ID), e)
}

func (c *Catalog) InvalidateEquipment(ctx context.Context, id int64) {
	c.del(ctx, equipmentKey(id))
}

// Cache failures are logged and treated as misses; the database stays authoritative.
func (c *Catalog) get(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		c.del(ctx, key)
		return false
	}
	return true
}

func (c *Catalog) set(ctx context.Context, key string, v any) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Catalog) del(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

func resourceKey(id int64) string  { return fmt.Sprintf("%s%d", prefixResource, id) }
func equipmentKey(id int64) string { return fmt.Sprintf("%s%d", prefixEquipment, id) }
