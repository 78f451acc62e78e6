package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/services"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field of JSON error bodies
const (
	errCodeInvalidState        = "invalid_state"
	errCodeExpiredState        = "expired_state"
	errCodeTokenExchangeFailed = "token_exchange_failed"
	errCodeMissingRefreshToken = "missing_refresh_token"
	errCodeIdentityFetchFailed = "identity_fetch_failed"
	errCodeRefreshFailed       = "refresh_failed"
	errCodeNotLinked           = "not_linked"
	errCodeSyncInProgress      = "sync_in_progress"
	errCodeProviderUnavailable = "provider_unavailable"
	errCodeMessageNotFound     = "message_not_found"
	errCodeInvalidRequest      = "invalid_request"
	errCodeServerError         = "server_error"
)

type errorMapping struct {
	target      error
	status      int
	code        string
	description string
}

// Checked in order; the first match wins
var errorMappings = []errorMapping{
	{services.ErrInvalidState, http.StatusBadRequest, errCodeInvalidState, "The authorization state is invalid"},
	{services.ErrExpiredState, http.StatusBadRequest, errCodeExpiredState, "The authorization state has expired"},
	{core.ErrMissingRefreshToken, http.StatusBadGateway, errCodeMissingRefreshToken, "The provider granted no offline access"},
	{core.ErrTokenExchangeFailed, http.StatusBadGateway, errCodeTokenExchangeFailed, "The authorization code could not be exchanged"},
	{core.ErrIdentityFetchFailed, http.StatusBadGateway, errCodeIdentityFetchFailed, "The mailbox identity could not be determined"},
	{services.ErrNotLinked, http.StatusNotFound, errCodeNotLinked, "No mailbox is linked"},
	{services.ErrSyncInProgress, http.StatusConflict, errCodeSyncInProgress, "A sync is already running for this mailbox"},
	{services.ErrMessageNotFound, http.StatusNotFound, errCodeMessageNotFound, "Message not found"},
}

// classifyError maps a service error to its HTTP status, error code and public description.
// A refresh rejected by the provider is 409 refresh_failed and needs a new link.
// A refresh that failed on a network error or provider 5xx is reported as
// 503 provider_unavailable instead, since the account stays active and the
// client may retry. The service error still wraps core.ErrRefreshFailed.
func classifyError(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.description
		}
	}

	if errors.Is(err, core.ErrRefreshFailed) {
		if errors.Is(err, core.ErrProviderUnavailable) {
			return http.StatusServiceUnavailable, errCodeProviderUnavailable, "The mail provider is temporarily unavailable"
		}
		return http.StatusConflict, errCodeRefreshFailed, "The mailbox must be linked again"
	}
	if errors.Is(err, core.ErrProviderUnavailable) {
		return http.StatusServiceUnavailable, errCodeProviderUnavailable, "The mail provider is temporarily unavailable"
	}

	return http.StatusInternalServerError, errCodeServerError, "Internal server error"
}

// respondError writes the JSON error body for err. Internal error text is never exposed.
func respondError(c *gin.Context, err error) {
	status, code, description := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"error":             code,
		"error_description": description,
	})
}

func respondBadRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":             errCodeInvalidRequest,
		"error_description": description,
	})
}
