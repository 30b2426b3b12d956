package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/models"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/logger"
	"github.com/famboard/famboard/pkg/metrics"
)

// SummaryService regenerates the per-family digest of current notes.
type SummaryService struct {
	db     *gorm.DB
	users  *UserService
	notes  *NoteService
	client ai.Client
	now    func() time.Time
	log    *zap.Logger
}

// NewSummaryService creates a SummaryService.
func NewSummaryService(db *gorm.DB, users *UserService, notes *NoteService, client ai.Client) (*SummaryService, error) {
	if db == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("summary service requires database")
	}
	if users == nil || notes == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("summary service requires user and note services")
	}
	if client == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("summary service requires AI client")
	}

	return &SummaryService{
		db:     db,
		users:  users,
		notes:  notes,
		client: client,
		now:    time.Now,
		log:    logger.WithModule("summary"),
	}, nil
}

// Generate produces a fresh summary of the family's notes and stores it,
// replacing any previous one. The stored summary starts out fresh; any
// later note mutation marks it stale again.
func (s *SummaryService) Generate(ctx context.Context, userID string) (*models.Summary, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	familyID := *principal.FamilyID

	family, notes, err := s.gather(ctx, familyID)
	if err != nil {
		return nil, err
	}

	summaryNotes := make([]ai.SummaryNote, 0, len(notes))
	for _, note := range notes {
		summaryNotes = append(summaryNotes, ai.SummaryNote{
			Description: note.Description,
			IsCompleted: note.IsCompleted,
		})
	}

	text, err := s.client.Summarize(ctx, ai.SummaryRequest{
		FamilyDescription: family.Description,
		OutputLanguage:    family.Language,
		Today:             s.now().UTC(),
		Notes:             summaryNotes,
	})
	if err != nil {
		metrics.SummaryRequests.WithLabelValues("error").Inc()
		s.log.Warn("summary generation failed", zap.Error(err))
		return nil, ErrSummaryFailed.WithInternal(err)
	}
	if strings.TrimSpace(text) == "" {
		metrics.SummaryRequests.WithLabelValues("error").Inc()
		return nil, ErrSummaryFailed
	}

	summary, err := s.notes.UpsertSummary(ctx, familyID, text)
	if err != nil {
		metrics.SummaryRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.SummaryRequests.WithLabelValues("success").Inc()
	return summary, nil
}

// gather loads the family profile and its notes concurrently; the
// summarizer needs both before it can be called.
func (s *SummaryService) gather(ctx context.Context, familyID string) (*models.Family, []models.Note, error) {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		family models.Family
		notes  []models.Note
		errs   error
	)

	collect := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = multierr.Append(errs, err)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		err := s.db.WithContext(ctx).First(&family, "id = ?", familyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				collect(ErrFamilyNotFound)
				return
			}
			collect(err)
		}
	}()
	go func() {
		defer wg.Done()
		err := s.db.WithContext(ctx).
			Where("family_id = ?", familyID).
			Order("created_at ASC").
			Find(&notes).Error
		if err != nil {
			collect(err)
		}
	}()
	wg.Wait()

	if errs != nil {
		if errors.Is(errs, ErrFamilyNotFound) {
			return nil, nil, ErrFamilyNotFound
		}
		return nil, nil, apperrors.ErrInternalServer.WithInternal(errs)
	}
	return &family, notes, nil
}
