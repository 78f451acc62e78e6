package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/models"
	"github.com/go-authgate/mailbridge/internal/store"
)

const (
	DefaultMessageListLimit = 50
	MaxMessageListLimit     = 500
)

// MessageSummary is a stored message without its raw payload
type MessageSummary struct {
	ID                string    `json:"id"`
	ProviderMessageID string    `json:"provider_message_id"`
	ThreadID          string    `json:"thread_id"`
	ReceivedAt        time.Time `json:"received_at"`
	Snippet           string    `json:"snippet"`
}

// MessageService reads messages mirrored by the sync engine
type MessageService struct {
	store   *store.Store
	metrics metrics.Recorder
}

func NewMessageService(s *store.Store, m metrics.Recorder) *MessageService {
	return &MessageService{store: s, metrics: m}
}

// NormalizeListWindow applies the default and bounds to a limit/offset pair
func NormalizeListWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultMessageListLimit
	}
	if limit > MaxMessageListLimit {
		limit = MaxMessageListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// List returns the user's stored messages, newest first
func (s *MessageService) List(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]MessageSummary, error) {
	account, err := s.primaryAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit, offset = NormalizeListWindow(limit, offset)
	msgs, err := s.store.ListMessages(ctx, account.ID, limit, offset)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("list_messages")
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(msgs))
	for _, m := range msgs {
		summaries = append(summaries, MessageSummary{
			ID:                m.ID,
			ProviderMessageID: m.ProviderMessageID,
			ThreadID:          m.ThreadID,
			ReceivedAt:        m.ReceivedAt,
			Snippet:           m.Snippet,
		})
	}
	return summaries, nil
}

// Get returns one stored message including its raw provider payload
func (s *MessageService) Get(
	ctx context.Context,
	userID, providerMessageID string,
) (*models.SyncedMessage, error) {
	account, err := s.primaryAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.GetMessage(ctx, account.ID, providerMessageID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_message")
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) primaryAccount(
	ctx context.Context,
	userID string,
) (*models.LinkedAccount, error) {
	account, err := s.store.GetPrimaryLinkedAccount(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_linked_account")
		return nil, fmt.Errorf("failed to look up linked account: %w", err)
	}
	return account, nil
}
