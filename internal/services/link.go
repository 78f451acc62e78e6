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
	"github.com/go-authgate/mailbridge/internal/state"
	"github.com/go-authgate/mailbridge/internal/store"
	"github.com/go-authgate/mailbridge/internal/util"

	"github.com/google/uuid"
)

// LinkOutcome is the result of completing an authorization round trip
type LinkOutcome string

const (
	LinkConnected        LinkOutcome = "connected"
	LinkAlreadyConnected LinkOutcome = "already_connected"
)

// Link attempt results used as metric labels
const (
	linkResultConnected   = "connected"
	linkResultReconnected = "reconnected"
	linkResultExisting    = "already_connected"
	linkResultFailed      = "failed"
)

// LinkResult describes the linked account after a completed callback
type LinkResult struct {
	Status           LinkOutcome `json:"status"`
	AccountID        string      `json:"account_id"`
	ProviderIdentity string      `json:"provider_identity"`
	Reconnected      bool        `json:"reconnected,omitempty"`
}

// LinkStatus is the read-only view of a user's mailbox link
type LinkStatus struct {
	Linked           bool       `json:"linked"`
	ProviderIdentity string     `json:"provider_identity,omitempty"`
	AccountID        string     `json:"account_id,omitempty"`
	LinkedAt         *time.Time `json:"linked_at,omitempty"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`
	NeedsReauth      bool       `json:"needs_reauth"`
	MessageCount     int64      `json:"message_count"`
}

// LinkService turns an OAuth callback into exactly one linked account per provider identity
type LinkService struct {
	store        *store.Store
	config       *config.Config
	provider     core.MailProvider
	codec        *state.Codec
	leases       core.LeaseStore
	auditService *AuditService
	metrics      metrics.Recorder
	now          func() time.Time
}

func NewLinkService(
	s *store.Store,
	cfg *config.Config,
	provider core.MailProvider,
	codec *state.Codec,
	leases core.LeaseStore,
	auditService *AuditService,
	m metrics.Recorder,
) *LinkService {
	return &LinkService{
		store:        s,
		config:       cfg,
		provider:     provider,
		codec:        codec,
		leases:       leases,
		auditService: auditService,
		metrics:      m,
		now:          time.Now,
	}
}

// Initiate returns the provider consent URL carrying a signed state bound to userID
func (s *LinkService) Initiate(ctx context.Context, userID string) (string, error) {
	token, err := s.codec.Issue(userID)
	if err != nil {
		return "", err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:   models.EventMailboxLinkInitiated,
		ActorUserID: userID,
		Action:      "Mailbox link initiated",
		Details:     models.AuditDetails{"provider": s.provider.Name()},
		Success:     true,
	})

	return s.provider.AuthCodeURL(token), nil
}

// Complete verifies the state, exchanges the code and persists the link.
// An identity already linked with a usable credential is left untouched.
func (s *LinkService) Complete(ctx context.Context, code, stateToken string) (*LinkResult, error) {
	claim, err := s.verifyState(ctx, stateToken)
	if err != nil {
		return nil, err
	}
	userID := claim.UserID
	ctx = util.SetUserIDContext(ctx, userID)

	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		s.linkFailed(ctx, userID, "token exchange", err)
		return nil, err
	}

	identity, err := s.provider.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		s.linkFailed(ctx, userID, "identity fetch", err)
		return nil, err
	}

	existing, err := s.store.GetLinkedAccountByIdentity(ctx, userID, identity)
	switch {
	case err == nil:
		if existing.Credential != nil && !existing.NeedsReauth() {
			return s.alreadyConnected(ctx, existing), nil
		}
		return s.reconnect(ctx, existing, tokens)
	case errors.Is(err, store.ErrRecordNotFound):
		return s.createLink(ctx, userID, identity, tokens)
	default:
		s.metrics.RecordDatabaseQueryError("get_linked_account")
		return nil, fmt.Errorf("failed to look up linked account: %w", err)
	}
}

func (s *LinkService) verifyState(ctx context.Context, stateToken string) (*state.Claim, error) {
	claim, err := s.codec.Verify(stateToken)
	if err != nil {
		result, mapped := "invalid", ErrInvalidState
		if errors.Is(err, state.ErrExpiredClaim) {
			result, mapped = "expired", ErrExpiredState
		}
		s.metrics.RecordStateVerification(result)
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventStateRejected,
			Severity:     models.SeverityWarning,
			ResourceType: models.ResourceState,
			Action:       "OAuth state rejected",
			Details:      models.AuditDetails{"reason": result},
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, mapped
	}

	if s.config.StateSingleUse {
		remaining := claim.ExpiresAt.Sub(s.now())
		if remaining <= 0 {
			s.metrics.RecordStateVerification("expired")
			return nil, ErrExpiredState
		}
		acquired, err := s.leases.Acquire(ctx, stateLeaseKey(claim.ID), claim.ID, remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to record state use: %w", err)
		}
		if !acquired {
			s.metrics.RecordStateVerification("replayed")
			s.auditService.Log(ctx, AuditLogEntry{
				EventType:    models.EventStateRejected,
				Severity:     models.SeverityWarning,
				ActorUserID:  claim.UserID,
				ResourceType: models.ResourceState,
				ResourceID:   claim.ID,
				Action:       "OAuth state replayed",
				Details:      models.AuditDetails{"reason": "replayed"},
				Success:      false,
			})
			return nil, ErrInvalidState
		}
	}

	s.metrics.RecordStateVerification("valid")
	return claim, nil
}

func (s *LinkService) createLink(
	ctx context.Context,
	userID, identity string,
	tokens *core.TokenSet,
) (*LinkResult, error) {
	now := s.now()
	account := &models.LinkedAccount{
		ID:               uuid.New().String(),
		UserID:           userID,
		ProviderIdentity: identity,
		Status:           models.AccountStatusActive,
		LinkedAt:         now,
	}
	cred := &models.Credential{
		ID:           uuid.New().String(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}

	if err := s.store.CreateLinkedAccount(ctx, account, cred); err != nil {
		// A concurrent callback for the same identity may have won the unique index
		if winner, lookupErr := s.store.GetLinkedAccountByIdentity(ctx, userID, identity); lookupErr == nil {
			return s.alreadyConnected(ctx, winner), nil
		}
		s.metrics.RecordDatabaseQueryError("create_linked_account")
		s.linkFailed(ctx, userID, "persist", err)
		return nil, fmt.Errorf("failed to create linked account: %w", err)
	}

	log.Printf("[Link] Mailbox linked: user=%s account=%s", userID, account.ID)
	s.metrics.RecordLinkAttempt(linkResultConnected)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventMailboxConnected,
		ActorUserID:  userID,
		ResourceType: models.ResourceLinkedAccount,
		ResourceID:   account.ID,
		ResourceName: identity,
		Action:       "Mailbox connected",
		Details:      models.AuditDetails{"provider": s.provider.Name()},
		Success:      true,
	})

	return &LinkResult{
		Status:           LinkConnected,
		AccountID:        account.ID,
		ProviderIdentity: identity,
	}, nil
}

// reconnect installs a fresh credential on an account flagged unusable or missing its credential
func (s *LinkService) reconnect(
	ctx context.Context,
	account *models.LinkedAccount,
	tokens *core.TokenSet,
) (*LinkResult, error) {
	cred := &models.Credential{
		ID:              uuid.New().String(),
		LinkedAccountID: account.ID,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		ExpiresAt:       tokens.ExpiresAt,
	}
	if err := s.store.ReplaceCredential(ctx, cred); err != nil {
		s.metrics.RecordDatabaseQueryError("replace_credential")
		s.linkFailed(ctx, account.UserID, "persist", err)
		return nil, fmt.Errorf("failed to replace credential: %w", err)
	}

	log.Printf("[Link] Mailbox reconnected: user=%s account=%s", account.UserID, account.ID)
	s.metrics.RecordLinkAttempt(linkResultReconnected)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventMailboxReconnected,
		ActorUserID:  account.UserID,
		ResourceType: models.ResourceLinkedAccount,
		ResourceID:   account.ID,
		ResourceName: account.ProviderIdentity,
		Action:       "Mailbox reconnected",
		Details:      models.AuditDetails{"previous_status": string(account.Status)},
		Success:      true,
	})

	return &LinkResult{
		Status:           LinkConnected,
		AccountID:        account.ID,
		ProviderIdentity: account.ProviderIdentity,
		Reconnected:      true,
	}, nil
}

func (s *LinkService) alreadyConnected(ctx context.Context, account *models.LinkedAccount) *LinkResult {
	s.metrics.RecordLinkAttempt(linkResultExisting)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventMailboxAlreadyLinked,
		ActorUserID:  account.UserID,
		ResourceType: models.ResourceLinkedAccount,
		ResourceID:   account.ID,
		ResourceName: account.ProviderIdentity,
		Action:       "Mailbox already connected",
		Success:      true,
	})
	return &LinkResult{
		Status:           LinkAlreadyConnected,
		AccountID:        account.ID,
		ProviderIdentity: account.ProviderIdentity,
	}
}

func (s *LinkService) linkFailed(ctx context.Context, userID, stage string, err error) {
	log.Printf("[Link] Link failed at %s: user=%s error=%v", stage, userID, err)
	s.metrics.RecordLinkAttempt(linkResultFailed)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventMailboxLinkFailed,
		Severity:     models.SeverityWarning,
		ActorUserID:  userID,
		ResourceType: models.ResourceLinkedAccount,
		Action:       "Mailbox link failed",
		Details:      models.AuditDetails{"stage": stage},
		Success:      false,
		ErrorMessage: err.Error(),
	})
}

// Disconnect revokes the grant (best-effort) and removes the account with its credential and messages
func (s *LinkService) Disconnect(ctx context.Context, userID string) error {
	account, err := s.store.GetPrimaryLinkedAccount(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return ErrNotLinked
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_linked_account")
		return fmt.Errorf("failed to look up linked account: %w", err)
	}

	// Holding the sync lease keeps a running sync from writing rows for a deleted account
	release, err := acquireSyncLease(ctx, s.leases, account.ID, s.config.SyncLockTTL)
	if err != nil {
		return err
	}
	defer release()

	revoked := false
	if account.Credential != nil && account.Credential.RefreshToken != "" {
		if err := s.provider.Revoke(ctx, account.Credential.RefreshToken); err != nil {
			log.Printf("[Link] Revoke failed, unlinking anyway: account=%s error=%v", account.ID, err)
			s.auditService.Log(ctx, AuditLogEntry{
				EventType:    models.EventMailboxRevokeFailed,
				Severity:     models.SeverityWarning,
				ActorUserID:  userID,
				ResourceType: models.ResourceCredential,
				ResourceID:   account.ID,
				Action:       "Provider revocation failed",
				Success:      false,
				ErrorMessage: err.Error(),
			})
		} else {
			revoked = true
		}
	}

	if err := s.store.DeleteLinkedAccount(ctx, account.ID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotLinked
		}
		s.metrics.RecordDatabaseQueryError("delete_linked_account")
		return fmt.Errorf("failed to delete linked account: %w", err)
	}

	log.Printf("[Link] Mailbox disconnected: user=%s account=%s revoked=%t", userID, account.ID, revoked)
	s.metrics.RecordDisconnect(revoked)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventMailboxDisconnected,
		ActorUserID:  userID,
		ResourceType: models.ResourceLinkedAccount,
		ResourceID:   account.ID,
		ResourceName: account.ProviderIdentity,
		Action:       "Mailbox disconnected",
		Details:      models.AuditDetails{"revoked": revoked},
		Success:      true,
	})
	return nil
}

// Status reports whether userID has a linked mailbox
func (s *LinkService) Status(ctx context.Context, userID string) (*LinkStatus, error) {
	account, err := s.store.GetPrimaryLinkedAccount(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return &LinkStatus{Linked: false}, nil
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_linked_account")
		return nil, fmt.Errorf("failed to look up linked account: %w", err)
	}

	count, err := s.store.CountMessages(ctx, account.ID)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("count_messages")
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	linkedAt := account.LinkedAt
	return &LinkStatus{
		Linked:           true,
		ProviderIdentity: account.ProviderIdentity,
		AccountID:        account.ID,
		LinkedAt:         &linkedAt,
		LastSyncedAt:     account.LastSyncedAt,
		NeedsReauth:      account.NeedsReauth() || account.Credential == nil,
		MessageCount:     count,
	}, nil
}

// acquireSyncLease takes the per-account sync lease or fails with ErrSyncInProgress.
// The returned func releases it even if ctx has been cancelled.
func acquireSyncLease(
	ctx context.Context,
	leases core.LeaseStore,
	accountID string,
	ttl time.Duration,
) (func(), error) {
	owner := uuid.NewString()
	key := syncLeaseKey(accountID)
	acquired, err := leases.Acquire(ctx, key, owner, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lease: %w", err)
	}
	if !acquired {
		return nil, ErrSyncInProgress
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := leases.Release(releaseCtx, key, owner); err != nil {
			log.Printf("[Lease] Failed to release %s: %v", key, err)
		}
	}, nil
}
