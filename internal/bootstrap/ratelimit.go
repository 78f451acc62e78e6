package bootstrap

import (
	"log"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/middleware"
	"github.com/go-authgate/mailbridge/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	connect  gin.HandlerFunc
	callback gin.HandlerFunc
	sync     gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	// Return no-op middlewares when rate limiting is disabled
	noOpMiddleware := func(c *gin.Context) { c.Next() }
	disabledLimiters := rateLimitMiddlewares{
		connect:  noOpMiddleware,
		callback: noOpMiddleware,
		sync:     noOpMiddleware,
	}

	switch {
	case !cfg.EnableRateLimit:
		return disabledLimiters
	default:
		return createRateLimiters(cfg, auditService, redisClient)
	}
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		log.Printf("Using shared Redis client for rate limiting (provided externally)")
	} else {
		log.Printf("In-memory rate limiting configured (single instance only)")
	}

	createLimiter := func(requestsPerMinute int, prefix, endpoint string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			KeyPrefix:         prefix,
			RedisClient:       redisClient, // nil for memory store
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			AuditService:      auditService,
		})
		if err != nil {
			log.Fatalf("Failed to create rate limiter for %s: %v", endpoint, err)
		}
		return limiter
	}

	return rateLimitMiddlewares{
		connect:  createLimiter(cfg.ConnectRateLimit, "connect", "/api/mailbox/connect"),
		callback: createLimiter(cfg.CallbackRateLimit, "callback", "/api/mailbox/callback"),
		sync:     createLimiter(cfg.SyncRateLimit, "sync", "/api/mailbox/sync"),
	}
}
