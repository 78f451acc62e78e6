package bootstrap

import (
	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/handlers"
	"github.com/go-authgate/mailbridge/internal/services"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	mailbox *handlers.MailboxHandler
	audit   *handlers.AuditHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	linkService *services.LinkService,
	syncService *services.SyncService,
	messageService *services.MessageService,
	auditService *services.AuditService,
) handlerSet {
	return handlerSet{
		mailbox: handlers.NewMailboxHandler(
			linkService,
			syncService,
			messageService,
			cfg.LinkRedirectURL,
		),
		audit: handlers.NewAuditHandler(auditService),
	}
}
