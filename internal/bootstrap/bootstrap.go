package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/services"
	"github.com/go-authgate/mailbridge/internal/state"
	"github.com/go-authgate/mailbridge/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      metrics.Recorder
	LeaseStore           core.LeaseStore
	RateLimitRedisClient *redis.Client
	MailProvider         core.MailProvider
	StateCodec           *state.Codec

	// Services
	AuditService   *services.AuditService
	LinkService    *services.LinkService
	SyncService    *services.SyncService
	MessageService *services.MessageService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	app := &Application{
		Config: cfg,
	}

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, leases, Redis and the mail provider
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)

	// Lease store (sync lock and state replay guard)
	app.LeaseStore, err = initializeLeaseStore(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	// Mail provider
	app.MailProvider, err = initializeMailProvider(app.Config, app.MetricsRecorder)
	if err != nil {
		return err
	}
	app.StateCodec = state.NewCodec(app.Config.StateSecret, state.WithTTL(app.Config.StateTTL))

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	app.LinkService,
		app.SyncService,
		app.MessageService = initializeServices(
		app.Config,
		app.DB,
		app.MailProvider,
		app.StateCodec,
		app.LeaseStore,
		app.AuditService,
		app.MetricsRecorder,
	)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	// Handlers
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.LinkService,
		app.SyncService,
		app.MessageService,
		app.AuditService,
	)

	// Router
	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.LeaseStore,
		app.HandlerSet,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)

	// HTTP Server
	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addAuditServiceShutdownJob(m, app.Config, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addLeaseStoreShutdownJob(m, app.LeaseStore)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)

	// Wait for graceful shutdown
	<-m.Done()
}
