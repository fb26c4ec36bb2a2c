package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ikkim/dietprefs-client/config"
	"github.com/ikkim/dietprefs-client/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "dietprefs:metadata:"
	pingTimeout = 5 * time.Second
)

// Connect opens a client for the metadata cache and checks it answers.
// The cache is optional, so callers usually log the error and fall back to
// memory.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	log := logger.Component("redis")
	log.Info("Connecting to metadata cache", map[string]interface{}{
		"addr": addr,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}

	log.Info("Metadata cache connected", nil)
	return client, nil
}

// MetadataKey namespaces cached backend metadata entries.
func MetadataKey(name string) string {
	return keyPrefix + name
}
