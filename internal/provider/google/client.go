package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/retry"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ProviderName identifies Google in logs, metrics and audit records
const ProviderName = "google"

// Provider call names used as metric labels
const (
	opExchange = "exchange"
	opRefresh  = "refresh"
	opRevoke   = "revoke"
	opIdentity = "identity"
	opList     = "list"
	opGet      = "get"
)

// maxErrorBody bounds how much of an upstream error body is kept in error messages
const maxErrorBody = 512

// Compile-time interface check.
var _ core.MailProvider = (*Client)(nil)

// Config contains the OAuth client registration and endpoint overrides
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	Scopes        []string
	AuthURL       string
	TokenURL      string
	RevokeURL     string
	APIBaseURL    string // userinfo
	GmailBaseURL  string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// Client talks to Google's OAuth token endpoint, userinfo API and Gmail API.
// Every call is bounded by Config.Timeout through its context.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	retry      *retry.Client
	revokeURL  string
	apiBase    string
	gmailBase  string
	timeout    time.Duration
	metrics    core.Recorder
}

// NewClient creates a Google mail provider using httpClient for all outbound traffic
func NewClient(cfg Config, httpClient *http.Client, recorder core.Recorder) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		retry: retry.NewClient(
			retry.WithHTTPClient(httpClient),
			retry.WithMaxRetries(cfg.MaxRetries),
			retry.WithInitialRetryDelay(cfg.RetryDelay),
			retry.WithMaxRetryDelay(cfg.MaxRetryDelay),
		),
		revokeURL: cfg.RevokeURL,
		apiBase:   withTrailingSlash(cfg.APIBaseURL),
		gmailBase: withTrailingSlash(cfg.GmailBaseURL),
		timeout:   timeout,
		metrics:   recorder,
	}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return ProviderName
}

// AuthCodeURL returns the consent URL. Offline access with forced consent
// guarantees a refresh token on every grant, including repeat consent.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*core.TokenSet, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	start := time.Now()
	tok, err := c.oauth.Exchange(ctx, code)
	c.record(opExchange, err == nil, start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTokenExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: response has no access token", core.ErrTokenExchangeFailed)
	}
	if tok.RefreshToken == "" {
		return nil, core.ErrMissingRefreshToken
	}

	// Unknown lifetime is treated as already stale so the first sync refreshes
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now()
	}

	return &core.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
// A rejection by the token endpoint wraps ErrGrantRevoked; transport or 5xx
// failures wrap ErrProviderUnavailable. Both wrap ErrRefreshFailed.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*core.TokenSet, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	start := time.Now()
	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	c.record(opRefresh, err == nil, start)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && (rerr.Response == nil || rerr.Response.StatusCode < 500) {
			return nil, fmt.Errorf("%w: %w: %v", core.ErrRefreshFailed, core.ErrGrantRevoked, err)
		}
		return nil, fmt.Errorf("%w: %w: %v", core.ErrRefreshFailed, core.ErrProviderUnavailable, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: response has no access token", core.ErrRefreshFailed)
	}

	// Google does not rotate refresh tokens; keep the one we have when none is returned
	newRefresh := tok.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	return &core.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// Revoke invalidates the grant at Google's revocation endpoint
func (c *Client) Revoke(ctx context.Context, refreshToken string) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	form := url.Values{"token": {refreshToken}}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.revokeURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrRevokeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.retry.Do(ctx, req)
	if err != nil {
		c.record(opRevoke, false, start)
		return fmt.Errorf("%w: %v", core.ErrRevokeFailed, err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK
	c.record(opRevoke, ok, start)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrRevokeFailed, describeResponse(resp))
	}
	return nil
}

// FetchIdentity returns the email address of the account that granted access
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	svc, err := oauth2api.NewService(ctx,
		option.WithHTTPClient(c.authorizedClient(ctx, accessToken)),
		option.WithEndpoint(c.apiBase),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrIdentityFetchFailed, err)
	}

	start := time.Now()
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	c.record(opIdentity, err == nil, start)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrIdentityFetchFailed, err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("%w: userinfo has no email", core.ErrIdentityFetchFailed)
	}
	return strings.ToLower(info.Email), nil
}

// ListMessages returns one page of message references for the authorized mailbox
func (c *Client) ListMessages(
	ctx context.Context,
	accessToken, pageToken string,
	pageSize int,
) (*core.MessagePage, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	svc, err := c.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	call := svc.Users.Messages.List("me").MaxResults(int64(pageSize)).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	start := time.Now()
	resp, err := call.Do()
	c.record(opList, err == nil, start)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", core.ErrProviderUnavailable, err)
	}

	page := &core.MessagePage{
		Messages:      make([]core.MessageRef, 0, len(resp.Messages)),
		NextPageToken: resp.NextPageToken,
	}
	for _, m := range resp.Messages {
		if m == nil || m.Id == "" {
			continue
		}
		page.Messages = append(page.Messages, core.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return page, nil
}

// GetMessage fetches a full message. The response body is kept verbatim as the raw payload,
// so the call goes through the retrying client instead of the generated Gmail service.
func (c *Client) GetMessage(
	ctx context.Context,
	accessToken, messageID string,
) (*core.MessageDetail, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	endpoint := c.gmailBase + "gmail/v1/users/me/messages/" + url.PathEscape(messageID) + "?format=full"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.retry.Do(ctx, req)
	if err != nil {
		c.record(opGet, false, start)
		return nil, fmt.Errorf("%w: get message %s: %v", core.ErrProviderUnavailable, messageID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.record(opGet, false, start)
		return nil, fmt.Errorf(
			"%w: get message %s: %s",
			core.ErrProviderUnavailable,
			messageID,
			describeResponse(resp),
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(opGet, false, start)
		return nil, fmt.Errorf("%w: read message %s: %v", core.ErrProviderUnavailable, messageID, err)
	}
	c.record(opGet, true, start)

	var msg gmail.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: decode message %s: %v", core.ErrProviderUnavailable, messageID, err)
	}
	if msg.Id == "" {
		msg.Id = messageID
	}

	return &core.MessageDetail{
		ID:                 msg.Id,
		ThreadID:           msg.ThreadId,
		Snippet:            msg.Snippet,
		InternalDateMillis: msg.InternalDate,
		Raw:                raw,
	}, nil
}

func (c *Client) gmailService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx,
		option.WithHTTPClient(c.authorizedClient(ctx, accessToken)),
		option.WithEndpoint(c.gmailBase),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	return svc, nil
}

// callContext bounds a provider call and routes oauth2 traffic through our HTTP client
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.timeout)
}

// authorizedClient wraps the base transport with a static bearer token.
// oauth2.NewClient keeps only the transport, so the deadline comes from ctx.
func (c *Client) authorizedClient(ctx context.Context, accessToken string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func (c *Client) record(operation string, success bool, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordProviderCall(operation, success, time.Since(start))
}

func describeResponse(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(body) == 0 {
		return resp.Status
	}
	return fmt.Sprintf("%s - %s", resp.Status, strings.TrimSpace(string(body)))
}

func withTrailingSlash(base string) string {
	if base == "" || strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
