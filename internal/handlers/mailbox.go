package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-authgate/mailbridge/internal/middleware"
	"github.com/go-authgate/mailbridge/internal/services"

	"github.com/gin-gonic/gin"
)

// MailboxHandler exposes linking, sync and message reads for the calling user
type MailboxHandler struct {
	linkService     *services.LinkService
	syncService     *services.SyncService
	messageService  *services.MessageService
	linkRedirectURL string
}

func NewMailboxHandler(
	ls *services.LinkService,
	ss *services.SyncService,
	ms *services.MessageService,
	linkRedirectURL string,
) *MailboxHandler {
	return &MailboxHandler{
		linkService:     ls,
		syncService:     ss,
		messageService:  ms,
		linkRedirectURL: linkRedirectURL,
	}
}

// Connect starts the OAuth round trip and returns the consent URL
func (h *MailboxHandler) Connect(c *gin.Context) {
	authURL, err := h.linkService.Initiate(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authorization_url": authURL})
}

// Callback completes the OAuth round trip. It is public: the signed state names the user.
func (h *MailboxHandler) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		h.callbackFailed(c, http.StatusBadRequest, errCodeInvalidRequest, "Authorization was not granted")
		return
	}

	code, stateToken := c.Query("code"), c.Query("state")
	if code == "" || stateToken == "" {
		h.callbackFailed(c, http.StatusBadRequest, errCodeInvalidRequest, "code and state are required")
		return
	}

	result, err := h.linkService.Complete(c.Request.Context(), code, stateToken)
	if err != nil {
		if h.linkRedirectURL == "" {
			respondError(c, err)
			return
		}
		status, errCode, description := classifyError(err)
		h.callbackFailed(c, status, errCode, description)
		return
	}

	if h.linkRedirectURL != "" {
		c.Redirect(http.StatusFound, withQuery(h.linkRedirectURL, "status", string(result.Status)))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MailboxHandler) callbackFailed(c *gin.Context, status int, code, description string) {
	if h.linkRedirectURL != "" {
		c.Redirect(http.StatusFound, withQuery(h.linkRedirectURL, "error", code))
		return
	}
	c.JSON(status, gin.H{
		"error":             code,
		"error_description": description,
	})
}

// Status reports the caller's link without contacting the provider
func (h *MailboxHandler) Status(c *gin.Context) {
	status, err := h.linkService.Status(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Disconnect unlinks the caller's mailbox
func (h *MailboxHandler) Disconnect(c *gin.Context) {
	if err := h.linkService.Disconnect(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

// Sync runs one synchronous sync of the caller's mailbox
func (h *MailboxHandler) Sync(c *gin.Context) {
	result, err := h.syncService.Sync(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMessages returns stored messages newest first
func (h *MailboxHandler) ListMessages(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		respondBadRequest(c, "limit must be an integer")
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		respondBadRequest(c, "offset must be an integer")
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	limit, offset = services.NormalizeListWindow(limit, offset)
	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetMessage returns one stored message with its raw provider payload
func (h *MailboxHandler) GetMessage(c *gin.Context) {
	msg, err := h.messageService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// queryInt parses an optional integer query parameter; absent means zero
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

// withQuery appends key=value to target, keeping any query it already has
func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
