// Package redis provides Redis connection management and redis-backed stores.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/pkg/logger"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5 * time.Second
	defaultIOTimeout    = 3 * time.Second
	defaultPingTimeout  = 5 * time.Second
)

// RedisConnection manages the Redis client lifecycle.
// A single address yields a standalone client, several addresses a cluster client.
type RedisConnection struct {
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection connects to Redis and verifies connectivity with a ping.
func NewRedisConnection(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*RedisConnection, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("redis addresses not configured")
	}

	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = defaultPoolSize
	}
	minIdle := cfg.MinIdleConns
	if minIdle == 0 {
		minIdle = defaultMinIdleConns
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: minIdle,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultIOTimeout,
		WriteTimeout: defaultIOTimeout,
	})

	conn := NewRedisConnectionFromClient(client, log)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		conn.logger.Error(ctx, "Redis ping failed", err, logger.Any("addrs", cfg.Addresses))
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	conn.logger.Info(ctx, "Redis connection established successfully",
		logger.Any("addrs", cfg.Addresses),
		logger.Int("pool_size", poolSize),
	)
	return conn, nil
}

// NewRedisConnectionFromClient wraps an existing client.
func NewRedisConnectionFromClient(client redis.UniversalClient, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		client: client,
		logger: log.WithComponent("redis"),
	}
}

// Client returns the underlying client.
func (rc *RedisConnection) Client() redis.UniversalClient {
	return rc.client
}

// Ping checks Redis server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err)
		return err
	}
	return nil
}

// Close releases the connection pool.
func (rc *RedisConnection) Close() error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	rc.logger.Info(context.Background(), "Redis connection closed")
	return nil
}

//Personal.AI order the ending
