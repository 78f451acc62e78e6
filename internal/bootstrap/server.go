package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/services"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// auditCleanupInterval is how often expired audit logs are purged
const auditCleanupInterval = 24 * time.Hour

// createHTTPServer creates the HTTP server instance.
// WriteTimeout is generous since a sync request runs to completion in the handler.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addAuditServiceShutdownJob adds audit service shutdown handler
func addAuditServiceShutdownJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.AuditShutdownTimeout)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !cfg.EnableAuditLogging || cfg.AuditLogRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(auditCleanupInterval)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		cleanupAuditLogs(ctx, auditService, cfg.AuditLogRetention)

		for {
			select {
			case <-ticker.C:
				cleanupAuditLogs(ctx, auditService, cfg.AuditLogRetention)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func cleanupAuditLogs(
	ctx context.Context,
	auditService *services.AuditService,
	retention time.Duration,
) {
	if deleted, err := auditService.CleanupOldLogs(ctx, retention); err != nil {
		log.Printf("Failed to cleanup old audit logs: %v", err)
	} else if deleted > 0 {
		log.Printf("Cleaned up %d old audit logs", deleted)
	}
}

// addLeaseStoreShutdownJob releases the lease store connection
func addLeaseStoreShutdownJob(m *graceful.Manager, leases core.LeaseStore) {
	if leases == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := leases.Close(); err != nil {
			log.Printf("Error closing lease store: %v", err)
			return err
		}
		log.Println("Lease store closed")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		log.Println("Redis connection closed")
		return nil
	})
}
