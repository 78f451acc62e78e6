package bootstrap

import (
	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/services"
	"github.com/go-authgate/mailbridge/internal/state"
	"github.com/go-authgate/mailbridge/internal/store"
)

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	provider core.MailProvider,
	codec *state.Codec,
	leases core.LeaseStore,
	auditService *services.AuditService,
	prometheusMetrics metrics.Recorder,
) (*services.LinkService, *services.SyncService, *services.MessageService) {
	linkService := services.NewLinkService(
		db,
		cfg,
		provider,
		codec,
		leases,
		auditService,
		prometheusMetrics,
	)
	syncService := services.NewSyncService(
		db,
		cfg,
		provider,
		leases,
		auditService,
		prometheusMetrics,
	)
	messageService := services.NewMessageService(db, prometheusMetrics)

	return linkService, syncService, messageService
}
