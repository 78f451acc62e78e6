package store

import (
	"context"
	"time"

	"github.com/go-authgate/mailbridge/internal/models"

	"gorm.io/gorm"
)

// Audit log operations

// CreateAuditLog writes a single audit log entry
func (s *Store) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// CreateAuditLogBatch writes several audit log entries in one statement
func (s *Store) CreateAuditLogBatch(ctx context.Context, entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&entries).Error
}

// DeleteOldAuditLogs removes entries created before the cutoff
func (s *Store) DeleteOldAuditLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// GetAuditLogsPaginated returns audit logs newest first, filtered and paginated
func (s *Store) GetAuditLogsPaginated(
	ctx context.Context,
	params PaginationParams,
	filters AuditLogFilters,
) ([]models.AuditLog, PaginationResult, error) {
	query := applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditLog{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var logs []models.AuditLog
	offset := (params.Page - 1) * params.PageSize
	if err := query.Order("created_at DESC, id DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	return logs, CalculatePagination(total, params.Page, params.PageSize), nil
}

// AuditLogFilters narrows an audit log query; zero fields match everything
type AuditLogFilters struct {
	EventType   models.EventType
	ActorUserID string
	ResourceID  string
	Success     *bool
	Since       time.Time
}

func applyAuditFilters(query *gorm.DB, f AuditLogFilters) *gorm.DB {
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if f.ActorUserID != "" {
		query = query.Where("actor_user_id = ?", f.ActorUserID)
	}
	if f.ResourceID != "" {
		query = query.Where("resource_id = ?", f.ResourceID)
	}
	if f.Success != nil {
		query = query.Where("success = ?", *f.Success)
	}
	if !f.Since.IsZero() {
		query = query.Where("created_at >= ?", f.Since)
	}
	return query
}
