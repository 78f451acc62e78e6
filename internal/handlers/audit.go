package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-authgate/mailbridge/internal/middleware"
	"github.com/go-authgate/mailbridge/internal/models"
	"github.com/go-authgate/mailbridge/internal/services"
	"github.com/go-authgate/mailbridge/internal/store"

	"github.com/gin-gonic/gin"
)

// AuditHandler serves the caller's own audit trail
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListActivity returns the caller's audit events, newest first.
// Optional filters: event_type, success (true/false), since (RFC 3339).
func (h *AuditHandler) ListActivity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := store.NewPaginationParams(page, pageSize)

	filters := store.AuditLogFilters{
		EventType: models.EventType(c.Query("event_type")),
	}
	if raw := c.Query("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "success must be true or false")
			return
		}
		filters.Success = &success
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "since must be an RFC 3339 timestamp")
			return
		}
		filters.Since = since
	}

	logs, pagination, err := h.auditService.ListUserActivity(
		c.Request.Context(),
		middleware.GetUserID(c),
		params,
		filters,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": pagination,
	})
}
