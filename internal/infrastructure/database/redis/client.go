// Package redis provides the Redis client and the conversation store used by
// the assistant service for per-user dialogue history.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/pkg/errors"
)

// NewClient connects a go-redis client from the service configuration and
// verifies it with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis is unreachable")
	}

	log.Info("connected to redis", logging.String("addr", cfg.Addr))
	return rdb, nil
}
