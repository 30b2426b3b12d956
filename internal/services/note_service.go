package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/models"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/logger"
)

// NoteService owns the note and list lifecycle for a family, and keeps
// the cached summary's staleness flag honest: every mutation that
// changes what a summary would say marks the summary stale.
type NoteService struct {
	db    *gorm.DB
	users *UserService
	audit *AuditService
	now   func() time.Time
	log   *zap.Logger
}

// NewNoteService creates a NoteService. The audit service may be nil.
func NewNoteService(db *gorm.DB, users *UserService, audit *AuditService) (*NoteService, error) {
	if db == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("note service requires database")
	}
	if users == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("note service requires user service")
	}

	return &NoteService{
		db:    db,
		users: users,
		audit: audit,
		now:   time.Now,
		log:   logger.WithModule("notes"),
	}, nil
}

// Notes returns every note in the caller's family, oldest first. Users
// without a family get an empty slice, not an error, so fresh accounts
// can render an empty board.
func (s *NoteService) Notes(ctx context.Context, userID string) ([]models.Note, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.Authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.FamilyID == nil {
		return []models.Note{}, nil
	}

	var notes []models.Note
	err = s.db.WithContext(ctx).
		Where("family_id = ?", *principal.FamilyID).
		Order("created_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return notes, nil
}

// Lists returns every note list in the caller's family, oldest first.
func (s *NoteService) Lists(ctx context.Context, userID string) ([]models.NoteList, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.Authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.FamilyID == nil {
		return []models.NoteList{}, nil
	}

	var lists []models.NoteList
	err = s.db.WithContext(ctx).
		Where("family_id = ?", *principal.FamilyID).
		Order("created_at ASC").
		Find(&lists).Error
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return lists, nil
}

// Summary returns the cached family summary, or nil when none has been
// generated yet. Callers use IsStale to decide whether to regenerate.
func (s *NoteService) Summary(ctx context.Context, userID string) (*models.Summary, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.Authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.FamilyID == nil {
		return nil, nil
	}

	return s.summaryForFamily(ctx, *principal.FamilyID)
}

// ToggleCompleted flips a note's completion state and returns the
// updated note. Toggling twice restores the original state.
func (s *NoteService) ToggleCompleted(ctx context.Context, userID, noteID string) (*models.Note, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return nil, err
	}

	var note models.Note
	err = s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	if note.FamilyID != *principal.FamilyID {
		return nil, ErrNoteNotFound
	}

	note.IsCompleted = !note.IsCompleted
	err = s.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ?", note.ID).
		Update("is_completed", note.IsCompleted).Error
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	if err := s.markSummaryStale(ctx, note.FamilyID); err != nil {
		return nil, err
	}
	return &note, nil
}

// ClearCompleted deletes every completed note in a list and reports how
// many were removed.
func (s *NoteService) ClearCompleted(ctx context.Context, userID, listID string) (int64, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return 0, err
	}

	if _, err := s.listForFamily(ctx, *principal.FamilyID, listID); err != nil {
		return 0, err
	}

	result := s.db.WithContext(ctx).
		Where("list_id = ? AND is_completed = ?", listID, true).
		Delete(&models.Note{})
	if result.Error != nil {
		return 0, apperrors.ErrInternalServer.WithInternal(result.Error)
	}

	if err := s.markSummaryStale(ctx, *principal.FamilyID); err != nil {
		return 0, err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		FamilyID: *principal.FamilyID,
		Action:   "notes.clear_completed",
		Resource: listID,
		Result:   "success",
		Metadata: map[string]any{"deleted": result.RowsAffected},
	})
	return result.RowsAffected, nil
}

// DeleteList removes a list and its notes. Every note in the list must
// already be completed; a single open note blocks the whole deletion.
func (s *NoteService) DeleteList(ctx context.Context, userID, listID string) error {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return err
	}

	list, err := s.listForFamily(ctx, *principal.FamilyID, listID)
	if err != nil {
		return err
	}

	var open int64
	err = s.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("list_id = ? AND is_completed = ?", listID, false).
		Count(&open).Error
	if err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}
	if open > 0 {
		return ErrListNotCompleted
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", listID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.NoteList{}, "id = ?", listID).Error
	})
	if err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}

	if err := s.markSummaryStale(ctx, *principal.FamilyID); err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		FamilyID: *principal.FamilyID,
		Action:   "lists.delete",
		Resource: listID,
		Result:   "success",
		Metadata: map[string]any{"name": list.Name},
	})
	return nil
}

// CreateList inserts a new list for the family. Used by the classifier
// when no existing list fits a note.
func (s *NoteService) CreateList(ctx context.Context, familyID, name, description string) (*models.NoteList, error) {
	ctx = ensureContext(ctx)

	list := models.NoteList{
		Name:        name,
		Description: description,
		FamilyID:    familyID,
	}
	if err := s.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return &list, nil
}

// RenameList updates a list's name and description in place, keeping
// its notes attached.
func (s *NoteService) RenameList(ctx context.Context, familyID, listID, name, description string) error {
	ctx = ensureContext(ctx)

	if _, err := s.listForFamily(ctx, familyID, listID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Model(&models.NoteList{}).
		Where("id = ?", listID).
		Updates(map[string]any{"name": name, "description": description}).Error
	if err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}
	return nil
}

// AddNote inserts a note into a list and marks the summary stale.
func (s *NoteService) AddNote(ctx context.Context, familyID, userID, listID, description string) (*models.Note, error) {
	ctx = ensureContext(ctx)

	note := models.Note{
		Description: description,
		FamilyID:    familyID,
		UserID:      userID,
		ListID:      listID,
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	if err := s.markSummaryStale(ctx, familyID); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpsertSummary stores freshly generated summary text for the family,
// patching the existing row when one exists so each family keeps at
// most one summary.
func (s *NoteService) UpsertSummary(ctx context.Context, familyID, text string) (*models.Summary, error) {
	ctx = ensureContext(ctx)

	date := s.now().UTC().Format("2006-01-02")

	var existing models.Summary
	err := s.db.WithContext(ctx).First(&existing, "family_id = ?", familyID).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"summary":  text,
			"is_stale": false,
			"date":     date,
		}
		err = s.db.WithContext(ctx).
			Model(&models.Summary{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error
		if err != nil {
			return nil, apperrors.ErrInternalServer.WithInternal(err)
		}
		existing.Summary = text
		existing.IsStale = false
		existing.Date = date
		return &existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		summary := models.Summary{
			FamilyID: familyID,
			Summary:  text,
			IsStale:  false,
			Date:     date,
		}
		if err := s.db.WithContext(ctx).Create(&summary).Error; err != nil {
			// Two concurrent generates can race to insert the first
			// summary; the loser patches the winner's row instead.
			if isUniqueConstraintError(err) {
				return s.UpsertSummary(ctx, familyID, text)
			}
			return nil, apperrors.ErrInternalServer.WithInternal(err)
		}
		return &summary, nil

	default:
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
}

func (s *NoteService) summaryForFamily(ctx context.Context, familyID string) (*models.Summary, error) {
	var summary models.Summary
	err := s.db.WithContext(ctx).First(&summary, "family_id = ?", familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return &summary, nil
}

func (s *NoteService) listForFamily(ctx context.Context, familyID, listID string) (*models.NoteList, error) {
	var list models.NoteList
	err := s.db.WithContext(ctx).First(&list, "id = ?", listID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	if list.FamilyID != familyID {
		return nil, ErrListNotFound
	}
	return &list, nil
}

// markSummaryStale flags the family's cached summary for regeneration.
// A family without a summary yet has nothing to flag.
func (s *NoteService) markSummaryStale(ctx context.Context, familyID string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Summary{}).
		Where("family_id = ?", familyID).
		Update("is_stale", true).Error
	if err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}
	return nil
}
