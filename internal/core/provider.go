package core

import (
	"context"
	"errors"
	"time"
)

// Provider failure conditions. Implementations wrap these so callers can match
// with errors.Is without knowing the transport.
var (
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrMissingRefreshToken = errors.New("provider returned no refresh token")
	ErrRefreshFailed       = errors.New("token refresh failed")
	// ErrGrantRevoked accompanies ErrRefreshFailed when the token endpoint rejected the grant
	ErrGrantRevoked        = errors.New("grant revoked or invalid")
	ErrIdentityFetchFailed = errors.New("identity fetch failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrRevokeFailed        = errors.New("token revocation failed")
)

// TokenSet is the credential material returned by a code exchange or refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// MessageRef is a message stub from a list page.
type MessageRef struct {
	ID       string
	ThreadID string
}

// MessagePage is one page of message references.
// NextPageToken is empty on the last page.
type MessagePage struct {
	Messages      []MessageRef
	NextPageToken string
}

// MessageDetail is a fully fetched message. Raw is the provider response verbatim.
type MessageDetail struct {
	ID                 string
	ThreadID           string
	Snippet            string
	InternalDateMillis int64
	Raw                []byte
}

// MailProvider is the narrow surface of the mail provider used by the linker and sync engine.
type MailProvider interface {
	// Name returns the provider identifier used in logs and metrics
	Name() string

	// AuthCodeURL builds the consent URL carrying the opaque state. No network call.
	AuthCodeURL(state string) string

	// ExchangeCode trades an authorization code for tokens
	ExchangeCode(ctx context.Context, code string) (*TokenSet, error)

	// Refresh trades a refresh token for a fresh access token
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)

	// Revoke invalidates the grant upstream (best-effort)
	Revoke(ctx context.Context, refreshToken string) error

	// FetchIdentity returns the canonical account identifier (email)
	FetchIdentity(ctx context.Context, accessToken string) (string, error)

	// ListMessages returns one page of message references
	ListMessages(
		ctx context.Context,
		accessToken, pageToken string,
		pageSize int,
	) (*MessagePage, error)

	// GetMessage fetches full message detail
	GetMessage(ctx context.Context, accessToken, messageID string) (*MessageDetail, error)
}
