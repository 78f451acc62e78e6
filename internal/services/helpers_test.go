package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/lease"
	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/models"
	"github.com/go-authgate/mailbridge/internal/state"
	"github.com/go-authgate/mailbridge/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testStateSecret = "0123456789abcdef0123456789abcdef"

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		StateSecret:    testStateSecret,
		StateTTL:       10 * time.Minute,
		StateSingleUse: true,
		SyncPageSize:   2,
		SyncMaxPages:   20,
		SyncLockTTL:    time.Minute,
	}
}

// linkAccount stores an active account with a credential expiring at expiresAt
func linkAccount(
	t *testing.T,
	s *store.Store,
	userID, identity string,
	expiresAt time.Time,
) *models.LinkedAccount {
	t.Helper()
	account := &models.LinkedAccount{
		ID:               uuid.New().String(),
		UserID:           userID,
		ProviderIdentity: identity,
		Status:           models.AccountStatusActive,
		LinkedAt:         time.Now(),
	}
	cred := &models.Credential{
		ID:           uuid.New().String(),
		AccessToken:  "access-current",
		RefreshToken: "refresh-current",
		ExpiresAt:    expiresAt,
	}
	require.NoError(t, s.CreateLinkedAccount(context.Background(), account, cred))
	return account
}

func newSyncService(s *store.Store, cfg *config.Config, p core.MailProvider) *SyncService {
	return NewSyncService(s, cfg, p, lease.NewMemoryStore(), nil, metrics.NewNoopMetrics())
}

func newLinkService(s *store.Store, cfg *config.Config, p core.MailProvider) *LinkService {
	return NewLinkService(
		s,
		cfg,
		p,
		state.NewCodec(cfg.StateSecret, state.WithTTL(cfg.StateTTL)),
		lease.NewMemoryStore(),
		nil,
		metrics.NewNoopMetrics(),
	)
}

// fakeProvider serves list pages keyed by page token and message details keyed by id
type fakeProvider struct {
	mu sync.Mutex

	pages       map[string]*core.MessagePage
	listErrors  map[string]error
	failDetails map[string]bool

	refreshTokens *core.TokenSet
	refreshErr    error

	// listGate, when set, blocks the first list call until closed
	listGate    chan struct{}
	listEntered chan struct{}

	calls       []string
	listTokens  []string
	detailCalls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		pages:       map[string]*core.MessagePage{},
		listErrors:  map[string]error{},
		failDetails: map[string]bool{},
		detailCalls: map[string]int{},
	}
}

// addPages builds a cursor chain: page i links to page i+1 with token "p<i+1>"
func (f *fakeProvider) addPages(pages ...[]string) {
	for i, ids := range pages {
		token := ""
		if i > 0 {
			token = fmt.Sprintf("p%d", i)
		}
		next := ""
		if i < len(pages)-1 {
			next = fmt.Sprintf("p%d", i+1)
		}
		refs := make([]core.MessageRef, 0, len(ids))
		for _, id := range ids {
			refs = append(refs, core.MessageRef{ID: id, ThreadID: "thread-" + id})
		}
		f.pages[token] = &core.MessagePage{Messages: refs, NextPageToken: next}
	}
}

func (f *fakeProvider) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProvider) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*core.TokenSet, error) {
	f.record("exchange")
	return &core.TokenSet{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*core.TokenSet, error) {
	f.record("refresh")
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if f.refreshTokens != nil {
		return f.refreshTokens, nil
	}
	return &core.TokenSet{
		AccessToken:  "access-refreshed",
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeProvider) Revoke(ctx context.Context, refreshToken string) error {
	f.record("revoke")
	return nil
}

func (f *fakeProvider) FetchIdentity(ctx context.Context, accessToken string) (string, error) {
	f.record("identity")
	return strings.TrimPrefix(accessToken, "access-") + "@example.com", nil
}

func (f *fakeProvider) ListMessages(
	ctx context.Context,
	accessToken, pageToken string,
	pageSize int,
) (*core.MessagePage, error) {
	f.record("list:" + pageToken)

	f.mu.Lock()
	f.listTokens = append(f.listTokens, accessToken)
	gate, entered := f.listGate, f.listEntered
	f.listGate = nil
	f.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}

	if err, ok := f.listErrors[pageToken]; ok {
		return nil, err
	}
	page, ok := f.pages[pageToken]
	if !ok {
		return &core.MessagePage{}, nil
	}
	return page, nil
}

func (f *fakeProvider) GetMessage(
	ctx context.Context,
	accessToken, messageID string,
) (*core.MessageDetail, error) {
	f.mu.Lock()
	f.detailCalls[messageID]++
	f.mu.Unlock()

	if f.failDetails[messageID] {
		return nil, fmt.Errorf("%w: detail %s", core.ErrProviderUnavailable, messageID)
	}
	return &core.MessageDetail{
		ID:                 messageID,
		ThreadID:           "thread-" + messageID,
		Snippet:            "snippet " + messageID,
		InternalDateMillis: 1700000000000 + int64(len(messageID)),
		Raw:                []byte(fmt.Sprintf(`{"id":%q}`, messageID)),
	}, nil
}
