package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/models"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/logger"
	"github.com/famboard/famboard/pkg/metrics"
)

// ClassificationResult reports where a classified note ended up.
type ClassificationResult struct {
	List        models.NoteList `json:"list"`
	Notes       []models.Note   `json:"notes"`
	CreatedList bool            `json:"created_list"`
	RenamedList bool            `json:"renamed_list"`
}

// ClassifierService routes free-text notes into lists using an AI
// classifier, creating or renaming lists as the classifier directs.
type ClassifierService struct {
	db     *gorm.DB
	users  *UserService
	notes  *NoteService
	audit  *AuditService
	client ai.Client
	log    *zap.Logger
}

// NewClassifierService creates a ClassifierService. The audit service may be nil.
func NewClassifierService(db *gorm.DB, users *UserService, notes *NoteService, audit *AuditService, client ai.Client) (*ClassifierService, error) {
	if db == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("classifier service requires database")
	}
	if users == nil || notes == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("classifier service requires user and note services")
	}
	if client == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("classifier service requires AI client")
	}

	return &ClassifierService{
		db:     db,
		users:  users,
		notes:  notes,
		audit:  audit,
		client: client,
		log:    logger.WithModule("classifier"),
	}, nil
}

// ClassifyAndAdd asks the classifier where the note text belongs, then
// applies its decision: rename an existing list in place, reuse a list
// whose name matches exactly, or create a new one. The classifier may
// split the text into several notes; all of them land in the chosen
// list. Nothing is written when classification fails.
func (s *ClassifierService) ClassifyAndAdd(ctx context.Context, userID, text string) (*ClassificationResult, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	familyID := *principal.FamilyID

	family, lists, err := s.loadContext(ctx, familyID)
	if err != nil {
		return nil, err
	}

	catalogue := make([]ai.ListInfo, 0, len(lists))
	for _, list := range lists {
		catalogue = append(catalogue, ai.ListInfo{Name: list.Name, Description: list.Description})
	}

	assignment, err := s.client.ClassifyNote(ctx, ai.ClassificationRequest{
		NoteText:       text,
		ExistingLists:  catalogue,
		OutputLanguage: family.Language,
	})
	if err != nil {
		if errors.Is(err, ai.ErrNoResult) {
			metrics.ClassificationRequests.WithLabelValues("parse_failure").Inc()
		} else {
			metrics.ClassificationRequests.WithLabelValues("error").Inc()
		}
		s.log.Warn("note classification failed", zap.Error(err))
		return nil, ErrClassificationFailed.WithInternal(err)
	}
	if len(assignment.Notes) == 0 {
		metrics.ClassificationRequests.WithLabelValues("parse_failure").Inc()
		return nil, ErrClassificationFailed
	}

	target, created, renamed, err := s.resolveList(ctx, familyID, lists, assignment)
	if err != nil {
		return nil, err
	}

	inserted, err := s.insertNotes(ctx, familyID, userID, target.ID, assignment.Notes)
	if err != nil {
		metrics.ClassificationRequests.WithLabelValues("error").Inc()
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	metrics.ClassificationRequests.WithLabelValues("success").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		FamilyID: familyID,
		Action:   "notes.add",
		Resource: target.ID,
		Result:   "success",
		Metadata: map[string]any{
			"list":         target.Name,
			"notes":        len(inserted),
			"created_list": created,
			"renamed_list": renamed,
		},
	})

	return &ClassificationResult{
		List:        *target,
		Notes:       inserted,
		CreatedList: created,
		RenamedList: renamed,
	}, nil
}

func (s *ClassifierService) loadContext(ctx context.Context, familyID string) (*models.Family, []models.NoteList, error) {
	var family models.Family
	err := s.db.WithContext(ctx).First(&family, "id = ?", familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrFamilyNotFound
		}
		return nil, nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	var lists []models.NoteList
	err = s.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at ASC").
		Find(&lists).Error
	if err != nil {
		return nil, nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return &family, lists, nil
}

// resolveList applies the classifier's decision in priority order:
// rename beats exact name match beats creating a new list.
func (s *ClassifierService) resolveList(ctx context.Context, familyID string, lists []models.NoteList, assignment *ai.Assignment) (*models.NoteList, bool, bool, error) {
	if assignment.ExistingListNameToRename != "" {
		for i := range lists {
			if lists[i].Name != assignment.ExistingListNameToRename {
				continue
			}
			err := s.notes.RenameList(ctx, familyID, lists[i].ID, assignment.List.Name, assignment.List.Description)
			if err != nil {
				return nil, false, false, err
			}
			renamed := lists[i]
			renamed.Name = assignment.List.Name
			renamed.Description = assignment.List.Description
			return &renamed, false, true, nil
		}
		// The classifier named a list that no longer exists; fall
		// through to the remaining resolution steps.
		s.log.Debug("rename target not found",
			zap.String("name", assignment.ExistingListNameToRename))
	}

	// Exact match only: "Groceries" and "groceries" are different lists.
	for i := range lists {
		if lists[i].Name == assignment.List.Name {
			return &lists[i], false, false, nil
		}
	}

	created, err := s.notes.CreateList(ctx, familyID, assignment.List.Name, assignment.List.Description)
	if err != nil {
		return nil, false, false, err
	}
	return created, true, false, nil
}

// insertNotes writes the classified notes concurrently. Any insert
// failure fails the whole operation.
func (s *ClassifierService) insertNotes(ctx context.Context, familyID, userID, listID string, drafts []ai.NoteDraft) ([]models.Note, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		inserted = make([]models.Note, 0, len(drafts))
		errs     error
	)

	for _, draft := range drafts {
		description := draft.Description
		wg.Add(1)
		go func() {
			defer wg.Done()

			note, err := s.notes.AddNote(ctx, familyID, userID, listID, description)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, err)
				return
			}
			inserted = append(inserted, *note)
		}()
	}
	wg.Wait()

	if errs != nil {
		return nil, errs
	}
	return inserted, nil
}
