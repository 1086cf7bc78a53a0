package common

import (
	"context"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/config"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client shared by the document store and the
// identity provider's revocation set.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	addr := cfg.Addr()
	logging.Info("Initializing Redis client", "addr", addr, "db", cfg.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// the pool reconnects on its own; callers see failures per operation
		logging.Warn("Failed to ping Redis", "addr", addr, "error", err.Error())
		return client
	}

	logging.Info("Successfully connected to Redis", "addr", addr)
	return client
}
