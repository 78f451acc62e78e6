package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/lease"
)

// leaseKeyPrefix namespaces lease keys in a shared Redis
const leaseKeyPrefix = "mailbridge:lease:"

// initializeLeaseStore creates the lease store used for sync locks and state replay protection
func initializeLeaseStore(ctx context.Context, cfg *config.Config) (core.LeaseStore, error) {
	switch cfg.LeaseStore {
	case config.LeaseStoreRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
		defer cancel()

		store, err := lease.NewRueidisStore(
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			leaseKeyPrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis lease store: %w", err)
		}
		log.Printf("Lease store: redis (address: %s, db: %d)", cfg.RedisAddr, cfg.RedisDB)
		return store, nil
	default:
		log.Printf("Lease store: memory (single instance only)")
		return lease.NewMemoryStore(), nil
	}
}
