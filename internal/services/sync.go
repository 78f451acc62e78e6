package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/models"
	"github.com/go-authgate/mailbridge/internal/store"

	"github.com/google/uuid"
)

// Sync results used as metric labels
const (
	syncResultSuccess       = "success"
	syncResultPartial       = "partial"
	syncResultTruncated     = "truncated"
	syncResultRefreshFailed = "refresh_failed"
	syncResultCancelled     = "cancelled"
	syncResultError         = "error"
)

// SyncResult summarizes one sync run
type SyncResult struct {
	StoredCount      int      `json:"stored_count"`
	Pages            int      `json:"pages"`
	SkippedExisting  int      `json:"skipped_existing"`
	FailedMessageIDs []string `json:"failed_message_ids"`
	// Partial is set when a list call failed and the run ended early
	Partial bool `json:"partial"`
	// Truncated is set when the page ceiling was reached with more pages remaining
	Truncated bool `json:"truncated"`
}

// SyncService mirrors remote messages of a linked mailbox into local storage
type SyncService struct {
	store        *store.Store
	config       *config.Config
	provider     core.MailProvider
	leases       core.LeaseStore
	auditService *AuditService
	metrics      metrics.Recorder
	now          func() time.Time
}

func NewSyncService(
	s *store.Store,
	cfg *config.Config,
	provider core.MailProvider,
	leases core.LeaseStore,
	auditService *AuditService,
	m metrics.Recorder,
) *SyncService {
	return &SyncService{
		store:        s,
		config:       cfg,
		provider:     provider,
		leases:       leases,
		auditService: auditService,
		metrics:      m,
		now:          time.Now,
	}
}

// Sync walks the provider's message pages and stores every message not yet seen.
// It is safe to call repeatedly; stored rows are never duplicated.
// On cancellation or a storage error the result so far is returned with the error.
func (s *SyncService) Sync(ctx context.Context, userID string) (*SyncResult, error) {
	start := time.Now()

	account, err := s.store.GetPrimaryLinkedAccount(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_linked_account")
		return nil, fmt.Errorf("failed to look up linked account: %w", err)
	}
	if account.NeedsReauth() {
		return nil, fmt.Errorf("%w: mailbox must be linked again", core.ErrRefreshFailed)
	}

	release, err := acquireSyncLease(ctx, s.leases, account.ID, s.config.SyncLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload under the lease: a sync that just finished may have refreshed the
	// credential, and a disconnect may have removed the account.
	account, err = s.store.GetLinkedAccountByID(ctx, account.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_linked_account")
		return nil, fmt.Errorf("failed to reload linked account: %w", err)
	}
	if account.Credential == nil {
		return nil, ErrNotLinked
	}
	if account.NeedsReauth() {
		return nil, fmt.Errorf("%w: mailbox must be linked again", core.ErrRefreshFailed)
	}

	accessToken, err := s.ensureFresh(ctx, account)
	if err != nil {
		s.metrics.RecordSync(syncResultRefreshFailed, time.Since(start), 0)
		s.syncFailed(ctx, account, nil, err)
		return nil, err
	}

	result := &SyncResult{FailedMessageIDs: []string{}}
	if err := s.walkPages(ctx, account, accessToken, result); err != nil {
		label := syncResultError
		if ctx.Err() != nil {
			label = syncResultCancelled
		}
		s.metrics.RecordSync(label, time.Since(start), result.StoredCount)
		s.syncFailed(ctx, account, result, err)
		return result, err
	}

	if err := s.store.TouchLastSynced(ctx, account.ID, s.now()); err != nil {
		s.metrics.RecordDatabaseQueryError("touch_last_synced")
		log.Printf("[Sync] Failed to record sync time: account=%s error=%v", account.ID, err)
	}

	label := syncResultSuccess
	switch {
	case result.Partial:
		label = syncResultPartial
	case result.Truncated:
		label = syncResultTruncated
	}
	duration := time.Since(start)
	s.metrics.RecordSync(label, duration, result.StoredCount)

	log.Printf(
		"[Sync] Completed: account=%s pages=%d stored=%d skipped=%d failed=%d partial=%t truncated=%t duration=%s",
		account.ID,
		result.Pages,
		result.StoredCount,
		result.SkippedExisting,
		len(result.FailedMessageIDs),
		result.Partial,
		result.Truncated,
		duration,
	)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventSyncCompleted,
		ActorUserID:  account.UserID,
		ResourceType: models.ResourceLinkedAccount,
		ResourceID:   account.ID,
		ResourceName: account.ProviderIdentity,
		Action:       "Mailbox sync completed",
		Details:      syncDetails(result),
		Success:      true,
	})
	if len(result.FailedMessageIDs) > 0 {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventMessageFetchFailed,
			Severity:     models.SeverityWarning,
			ActorUserID:  account.UserID,
			ResourceType: models.ResourceMessage,
			ResourceID:   account.ID,
			Action:       "Message detail fetch failed",
			Details:      models.AuditDetails{"message_ids": result.FailedMessageIDs},
			Success:      false,
		})
	}

	return result, nil
}

// ensureFresh refreshes a stale access token and persists it before any list call
func (s *SyncService) ensureFresh(ctx context.Context, account *models.LinkedAccount) (string, error) {
	cred := account.Credential
	if !cred.IsExpired(s.now()) {
		return cred.AccessToken, nil
	}

	tokens, err := s.provider.Refresh(ctx, cred.RefreshToken)
	s.metrics.RecordTokenRefresh(err == nil)
	if err != nil {
		if errors.Is(err, core.ErrGrantRevoked) {
			if statusErr := s.store.UpdateLinkedAccountStatus(
				ctx,
				account.ID,
				models.AccountStatusReauthRequired,
			); statusErr != nil {
				s.metrics.RecordDatabaseQueryError("update_account_status")
				log.Printf("[Sync] Failed to flag account for re-link: account=%s error=%v", account.ID, statusErr)
			}
		}
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventCredentialRefreshFailed,
			Severity:     models.SeverityError,
			ActorUserID:  account.UserID,
			ResourceType: models.ResourceCredential,
			ResourceID:   account.ID,
			Action:       "Access token refresh failed",
			Details:      models.AuditDetails{"grant_revoked": errors.Is(err, core.ErrGrantRevoked)},
			Success:      false,
			ErrorMessage: err.Error(),
		})
		if !errors.Is(err, core.ErrRefreshFailed) {
			err = fmt.Errorf("%w: %v", core.ErrRefreshFailed, err)
		}
		return "", err
	}

	if err := s.store.UpdateCredentialTokens(
		ctx,
		account.ID,
		tokens.AccessToken,
		tokens.RefreshToken,
		tokens.ExpiresAt,
	); err != nil {
		s.metrics.RecordDatabaseQueryError("update_credential")
		return "", fmt.Errorf("failed to persist refreshed credential: %w", err)
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventCredentialRefreshed,
		ActorUserID:  account.UserID,
		ResourceType: models.ResourceCredential,
		ResourceID:   account.ID,
		Action:       "Access token refreshed",
		Success:      true,
	})
	return tokens.AccessToken, nil
}

func (s *SyncService) walkPages(
	ctx context.Context,
	account *models.LinkedAccount,
	accessToken string,
	result *SyncResult,
) error {
	pageSize := s.config.SyncPageSize
	if pageSize <= 0 {
		pageSize = config.DefaultSyncPageSize
	}
	maxPages := s.config.SyncMaxPages
	if maxPages <= 0 {
		maxPages = config.DefaultSyncMaxPages
	}

	pageToken := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if result.Pages >= maxPages {
			result.Truncated = true
			return nil
		}

		page, err := s.provider.ListMessages(ctx, accessToken, pageToken, pageSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// A failed list ends the run; whatever was committed stays and the next sync resumes
			log.Printf("[Sync] List failed, ending run early: account=%s page=%d error=%v",
				account.ID, result.Pages+1, err)
			result.Partial = true
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Pages++

		if err := s.storePage(ctx, account, accessToken, page, result); err != nil {
			return err
		}

		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

// storePage fetches the unseen messages of one page and commits them in a single insert
func (s *SyncService) storePage(
	ctx context.Context,
	account *models.LinkedAccount,
	accessToken string,
	page *core.MessagePage,
	result *SyncResult,
) error {
	refs := make(map[string]core.MessageRef, len(page.Messages))
	ids := make([]string, 0, len(page.Messages))
	for _, ref := range page.Messages {
		if ref.ID == "" {
			continue
		}
		if _, dup := refs[ref.ID]; dup {
			continue
		}
		refs[ref.ID] = ref
		ids = append(ids, ref.ID)
	}

	existing, err := s.store.ExistingMessageIDs(ctx, account.ID, ids)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("existing_message_ids")
		return fmt.Errorf("failed to check stored messages: %w", err)
	}

	batch := make([]*models.SyncedMessage, 0, len(ids)-len(existing))
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			result.SkippedExisting++
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		detail, err := s.provider.GetMessage(ctx, accessToken, id)
		if err != nil {
			// Not stored, so the next sync fetches it again
			log.Printf("[Sync] Skipping message: account=%s message=%s error=%v", account.ID, id, err)
			result.FailedMessageIDs = append(result.FailedMessageIDs, id)
			s.metrics.RecordMessageFetchFailure()
			continue
		}

		threadID := detail.ThreadID
		if threadID == "" {
			threadID = refs[id].ThreadID
		}
		batch = append(batch, &models.SyncedMessage{
			ID:                uuid.New().String(),
			LinkedAccountID:   account.ID,
			ProviderMessageID: id,
			ThreadID:          threadID,
			ReceivedAt:        time.UnixMilli(detail.InternalDateMillis).UTC(),
			Snippet:           detail.Snippet,
			RawPayload:        models.RawPayload(detail.Raw),
		})
	}

	inserted, err := s.store.InsertMessages(ctx, batch)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("insert_messages")
		return fmt.Errorf("failed to store messages: %w", err)
	}
	result.StoredCount += int(inserted)
	return nil
}

func (s *SyncService) syncFailed(
	ctx context.Context,
	account *models.LinkedAccount,
	result *SyncResult,
	err error,
) {
	log.Printf("[Sync] Failed: account=%s error=%v", account.ID, err)
	var details models.AuditDetails
	if result != nil {
		details = syncDetails(result)
	}
	// The request context may already be cancelled; the audit write must not depend on it
	s.auditService.Log(context.WithoutCancel(ctx), AuditLogEntry{
		EventType:    models.EventSyncFailed,
		Severity:     models.SeverityError,
		ActorUserID:  account.UserID,
		ResourceType: models.ResourceLinkedAccount,
		ResourceID:   account.ID,
		ResourceName: account.ProviderIdentity,
		Action:       "Mailbox sync failed",
		Details:      details,
		Success:      false,
		ErrorMessage: err.Error(),
	})
}

func syncDetails(result *SyncResult) models.AuditDetails {
	return models.AuditDetails{
		"stored":    result.StoredCount,
		"pages":     result.Pages,
		"skipped":   result.SkippedExisting,
		"failed":    len(result.FailedMessageIDs),
		"partial":   result.Partial,
		"truncated": result.Truncated,
	}
}
