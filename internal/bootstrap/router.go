package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/middleware"
	"github.com/go-authgate/mailbridge/internal/services"
	"github.com/go-authgate/mailbridge/internal/store"
	"github.com/go-authgate/mailbridge/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// healthCheckTimeout bounds the dependency pings of /health
const healthCheckTimeout = 2 * time.Second

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	leases core.LeaseStore,
	h handlerSet,
	prometheusMetrics metrics.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.IPMiddleware())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db, leases))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters := setupRateLimiting(cfg, auditService, rateLimitRedisClient)

	// Setup all routes
	setupAllRoutes(r, cfg, h, rateLimiters)

	// Log server startup info
	logServerStartup(cfg)

	return r
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// OAuth redirect target (public, the signed state identifies the user)
	r.GET("/api/mailbox/callback", rateLimiters.callback, h.mailbox.Callback)

	// Mailbox API (requires a session token)
	mailbox := r.Group("/api/mailbox")
	mailbox.Use(middleware.RequireUser(cfg.SessionJWTSecret))
	{
		mailbox.POST("/connect", rateLimiters.connect, h.mailbox.Connect)
		mailbox.GET("/status", h.mailbox.Status)
		mailbox.DELETE("", h.mailbox.Disconnect)
		mailbox.POST("/sync", rateLimiters.sync, h.mailbox.Sync)
		mailbox.GET("/messages", h.mailbox.ListMessages)
		mailbox.GET("/messages/:id", h.mailbox.GetMessage)
		mailbox.GET("/activity", h.audit.ListActivity)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store, leases core.LeaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := db.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}
		if err := leases.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "connected",
				"leases":   "disconnected",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"leases":   "connected",
		})
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("%s starting on %s", version.String(), cfg.ServerAddr)
	log.Printf("OAuth callback URL: %s", cfg.GoogleRedirectURL)
	log.Printf("Sync: page size %d, max pages %d, lock TTL %v",
		cfg.SyncPageSize, cfg.SyncMaxPages, cfg.SyncLockTTL)
	if cfg.LinkRedirectURL != "" {
		log.Printf("Callback redirects to: %s", cfg.LinkRedirectURL)
	}
}
