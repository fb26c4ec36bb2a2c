package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	redisutil "github.com/ikkim/dietprefs-client/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when nothing has been stored for a key yet.
var ErrCacheMiss = errors.New("metadata cache miss")

// MetadataCache keeps the last backend config and preference labels so the
// client can keep formatting consistently while offline.
type MetadataCache interface {
	SaveAppConfig(ctx context.Context, cfg model.AppConfig) error
	LoadAppConfig(ctx context.Context) (*model.AppConfig, error)
	SavePreferenceMetadata(ctx context.Context, meta model.PreferenceMetadata) error
	LoadPreferenceMetadata(ctx context.Context) (model.PreferenceMetadata, error)
}

const (
	appConfigKey   = "app_config"
	preferencesKey = "preferences"
)

type redisMetadataCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMetadataCache stores entries as JSON with the given TTL
// (0 keeps them forever).
func NewRedisMetadataCache(client *redis.Client, ttl time.Duration) MetadataCache {
	return &redisMetadataCache{client: client, ttl: ttl}
}

func (c *redisMetadataCache) SaveAppConfig(ctx context.Context, cfg model.AppConfig) error {
	return c.set(ctx, appConfigKey, cfg)
}

func (c *redisMetadataCache) LoadAppConfig(ctx context.Context) (*model.AppConfig, error) {
	var cfg model.AppConfig
	if err := c.get(ctx, appConfigKey, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *redisMetadataCache) SavePreferenceMetadata(ctx context.Context, meta model.PreferenceMetadata) error {
	return c.set(ctx, preferencesKey, meta)
}

func (c *redisMetadataCache) LoadPreferenceMetadata(ctx context.Context) (model.PreferenceMetadata, error) {
	var meta model.PreferenceMetadata
	if err := c.get(ctx, preferencesKey, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *redisMetadataCache) set(ctx context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := c.client.Set(ctx, redisutil.MetadataKey(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", name, err)
	}
	return nil
}

func (c *redisMetadataCache) get(ctx context.Context, name string, v interface{}) error {
	data, err := c.client.Get(ctx, redisutil.MetadataKey(name)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cached %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", name, err)
	}
	return nil
}

type memoryMetadataCache struct {
	mu    sync.RWMutex
	cfg   *model.AppConfig
	prefs model.PreferenceMetadata
}

// NewMemoryMetadataCache is used when redis is disabled.
func NewMemoryMetadataCache() MetadataCache {
	return &memoryMetadataCache{}
}

func (c *memoryMetadataCache) SaveAppConfig(_ context.Context, cfg model.AppConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = &cfg
	return nil
}

func (c *memoryMetadataCache) LoadAppConfig(_ context.Context) (*model.AppConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cfg == nil {
		return nil, ErrCacheMiss
	}
	cfg := *c.cfg
	return &cfg, nil
}

func (c *memoryMetadataCache) SavePreferenceMetadata(_ context.Context, meta model.PreferenceMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs = make(model.PreferenceMetadata, len(meta))
	for k, v := range meta {
		c.prefs[k] = v
	}
	return nil
}

func (c *memoryMetadataCache) LoadPreferenceMetadata(_ context.Context) (model.PreferenceMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.prefs == nil {
		return nil, ErrCacheMiss
	}
	out := make(model.PreferenceMetadata, len(c.prefs))
	for k, v := range c.prefs {
		out[k] = v
	}
	return out, nil
}
