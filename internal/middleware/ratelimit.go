package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-authgate/mailbridge/internal/models"
	"github.com/go-authgate/mailbridge/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType defines the type of rate limit store
type RateLimitStoreType string

const (
	// RateLimitStoreMemory uses in-memory storage (single instance only)
	RateLimitStoreMemory RateLimitStoreType = "memory"
	// RateLimitStoreRedis uses Redis storage (distributed, multi-pod support)
	RateLimitStoreRedis RateLimitStoreType = "redis"
)

// RateLimitConfig holds the configuration for one rate limited route group
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // How often to cleanup expired counters

	StoreType RateLimitStoreType
	// KeyPrefix separates the counters of different routes sharing one store
	KeyPrefix string

	// Redis settings (only used when StoreType = "redis").
	// RedisClient takes precedence over the address fields.
	RedisClient   *redis.Client
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AuditService records limit hits when set
	AuditService *services.AuditService
}

// NewRateLimiter creates a rate limiting middleware keyed by the authenticated user,
// falling back to the client IP for anonymous routes
func NewRateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(config.RequestsPerMinute),
	}

	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = limiter.DefaultCleanUpInterval
	}

	prefix := "ratelimit"
	if config.KeyPrefix != "" {
		prefix = "ratelimit:" + config.KeyPrefix
	}

	var store limiter.Store
	var err error

	switch config.StoreType {
	case RateLimitStoreRedis:
		client := config.RedisClient
		if client == nil {
			client = redis.NewClient(&redis.Options{
				Addr:     config.RedisAddr,
				Password: config.RedisPassword,
				DB:       config.RedisDB,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				return nil, fmt.Errorf("failed to connect to Redis at %s: %w", config.RedisAddr, err)
			}
		}

		store, err = limiterRedis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cleanup,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}

	case RateLimitStoreMemory:
		fallthrough
	default:
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cleanup,
		})
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(
		instance,
		mgin.WithKeyGetter(rateLimitKey),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			config.AuditService.Log(c.Request.Context(), services.AuditLogEntry{
				EventType: models.EventRateLimitExceeded,
				Severity:  models.SeverityWarning,
				Action:    "Rate limit exceeded",
				Details: models.AuditDetails{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
					"limit":  config.RequestsPerMinute,
				},
				Success: false,
			})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		}),
	), nil
}

func rateLimitKey(c *gin.Context) string {
	if userID := GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// NewMemoryRateLimiter creates an in-memory rate limiter (single instance)
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
}
