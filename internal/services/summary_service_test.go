package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/models"
)

func newSummaryFixture(t *testing.T, client ai.Client) (*gorm.DB, *SummaryService, *models.User, *models.Family) {
	t.Helper()

	db := openServicesTestDB(t)
	users, err := NewUserService(db)
	require.NoError(t, err)
	notes, err := NewNoteService(db, users, nil)
	require.NoError(t, err)
	svc, err := NewSummaryService(db, users, notes, client)
	require.NoError(t, err)

	user := seedUser(t, db, "parent", nil)
	family := seedFamily(t, db, user, "Norwegian")
	return db, svc, user, family
}

func TestGenerateStoresFreshSummary(t *testing.T) {
	fake := &fakeAIClient{summaryText: "En rolig uke venter dere. Stå på!"}
	db, svc, user, family := newSummaryFixture(t, fake)

	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	}

	list := seedList(t, db, family.ID, "Handleliste", "Ting vi må kjøpe")
	seedNote(t, db, family.ID, user.ID, list.ID, "kjøp melk", false)
	seedNote(t, db, family.ID, user.ID, list.ID, "kjøp brød", true)

	summary, err := svc.Generate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, fake.summaryText, summary.Summary)
	require.False(t, summary.IsStale)
	require.Equal(t, "2026-08-29", summary.Date)

	// The summarizer saw the family profile and full note state,
	// completion flags included.
	require.Len(t, fake.summaryRequests, 1)
	req := fake.summaryRequests[0]
	require.Equal(t, family.Description, req.FamilyDescription)
	require.Equal(t, "Norwegian", req.OutputLanguage)
	require.Len(t, req.Notes, 2)
	require.ElementsMatch(t,
		[]ai.SummaryNote{
			{Description: "kjøp melk", IsCompleted: false},
			{Description: "kjøp brød", IsCompleted: true},
		},
		req.Notes,
	)
}

func TestGenerateReplacesExistingSummary(t *testing.T) {
	fake := &fakeAIClient{summaryText: "ny oppsummering"}
	db, svc, user, family := newSummaryFixture(t, fake)

	require.NoError(t, db.Create(&models.Summary{
		FamilyID: family.ID,
		Summary:  "gammel oppsummering",
		IsStale:  true,
		Date:     "2026-08-01",
	}).Error)

	summary, err := svc.Generate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "ny oppsummering", summary.Summary)
	require.False(t, summary.IsStale)

	var count int64
	require.NoError(t, db.Model(&models.Summary{}).Where("family_id = ?", family.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGenerateFailsOnModelError(t *testing.T) {
	fake := &fakeAIClient{summaryErr: errors.New("upstream timeout")}
	db, svc, user, family := newSummaryFixture(t, fake)

	_, err := svc.Generate(context.Background(), user.ID)
	require.ErrorIs(t, err, ErrSummaryFailed)

	var count int64
	require.NoError(t, db.Model(&models.Summary{}).Where("family_id = ?", family.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestGenerateFailsOnEmptyText(t *testing.T) {
	fake := &fakeAIClient{summaryText: "   \n"}
	_, svc, user, _ := newSummaryFixture(t, fake)

	_, err := svc.Generate(context.Background(), user.ID)
	require.ErrorIs(t, err, ErrSummaryFailed)
}

func TestGenerateRequiresFamily(t *testing.T) {
	fake := &fakeAIClient{summaryText: "noe"}
	db, svc, _, _ := newSummaryFixture(t, fake)

	loner := seedUser(t, db, "loner", nil)
	_, err := svc.Generate(context.Background(), loner.ID)
	require.ErrorIs(t, err, ErrNotInFamily)
	require.Empty(t, fake.summaryRequests)
}
