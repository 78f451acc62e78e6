package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/mailbridge/internal/config"

	"github.com/redis/go-redis/v9"
)

// initializeRateLimitRedisClient returns the go-redis client backing the rate limit counters.
// ulule/limiter only speaks go-redis, so this client is separate from the rueidis lease store.
// Returns nil when rate limiting is off or kept in memory.
func initializeRateLimitRedisClient(
	ctx context.Context,
	cfg *config.Config,
) (*redis.Client, error) {
	if !cfg.EnableRateLimit || cfg.RateLimitStore != config.RateLimitStoreRedis {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to rate limit Redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("Rate limit Redis client initialized (address: %s, db: %d)", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}
