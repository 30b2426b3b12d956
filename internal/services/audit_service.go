package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/models"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/logger"
)

// AuditService records who did what inside a family. Entries are
// best-effort: a failed write is logged, never surfaced to the caller.
type AuditService struct {
	db  *gorm.DB
	log *zap.Logger
}

// AuditEntry describes a single recorded action.
type AuditEntry struct {
	UserID   string
	FamilyID string
	Action   string
	Resource string
	Result   string
	Metadata map[string]any
}

// NewAuditService creates an AuditService backed by the given database.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("audit service requires database")
	}
	return &AuditService{db: db, log: logger.WithModule("audit")}, nil
}

// Record persists an audit entry.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	ctx = ensureContext(ctx)

	record := models.AuditLog{
		Action:   entry.Action,
		Resource: entry.Resource,
		Result:   entry.Result,
	}
	if entry.UserID != "" {
		userID := entry.UserID
		record.UserID = &userID
	}
	if entry.FamilyID != "" {
		familyID := entry.FamilyID
		record.FamilyID = &familyID
	}
	if len(entry.Metadata) > 0 {
		record.Metadata = datatypes.JSONMap(entry.Metadata)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.log.Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// List returns the most recent entries for a family, newest first.
func (s *AuditService) List(ctx context.Context, familyID string, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return entries, nil
}

// CleanupOlderThan removes entries past the retention window and reports
// how many rows were deleted.
func (s *AuditService) CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	ctx = ensureContext(ctx)

	cutoff := time.Now().UTC().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, apperrors.ErrInternalServer.WithInternal(result.Error)
	}
	return result.RowsAffected, nil
}

// recordAudit is a nil-safe helper so services can run without auditing wired.
func recordAudit(svc *AuditService, ctx context.Context, entry AuditEntry) {
	if svc == nil {
		return
	}
	svc.Record(ctx, entry)
}
