package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/models"
)

func newClassifierFixture(t *testing.T, client ai.Client) (*gorm.DB, *ClassifierService, *models.User, *models.Family) {
	t.Helper()

	db := openServicesTestDB(t)
	users, err := NewUserService(db)
	require.NoError(t, err)
	notes, err := NewNoteService(db, users, nil)
	require.NoError(t, err)
	svc, err := NewClassifierService(db, users, notes, nil, client)
	require.NoError(t, err)

	user := seedUser(t, db, "parent", nil)
	family := seedFamily(t, db, user, "Norwegian")
	return db, svc, user, family
}

func TestClassifyAndAddCreatesNewList(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes: []ai.NoteDraft{{Description: "kjøp melk"}},
			List:  ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
		},
	}
	db, svc, user, family := newClassifierFixture(t, fake)

	result, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk")
	require.NoError(t, err)
	require.True(t, result.CreatedList)
	require.False(t, result.RenamedList)
	require.Equal(t, "Handleliste", result.List.Name)
	require.Len(t, result.Notes, 1)

	var lists []models.NoteList
	require.NoError(t, db.Where("family_id = ?", family.ID).Find(&lists).Error)
	require.Len(t, lists, 1)

	// The classifier saw the family's language and its (empty) catalogue.
	require.Len(t, fake.classifyRequests, 1)
	require.Equal(t, "Norwegian", fake.classifyRequests[0].OutputLanguage)
	require.Empty(t, fake.classifyRequests[0].ExistingLists)
}

func TestClassifyAndAddReusesExactMatch(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes: []ai.NoteDraft{{Description: "kjøp brød"}},
			List:  ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
		},
	}
	db, svc, user, family := newClassifierFixture(t, fake)

	existing := seedList(t, db, family.ID, "Handleliste", "Ting vi må kjøpe")

	result, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp brød")
	require.NoError(t, err)
	require.False(t, result.CreatedList)
	require.Equal(t, existing.ID, result.List.ID)

	var count int64
	require.NoError(t, db.Model(&models.NoteList{}).Where("family_id = ?", family.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestClassifyAndAddRenamesExistingList(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes:                    []ai.NoteDraft{{Description: "kjøp melk"}},
			List:                     ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
			ExistingListNameToRename: "Butikken",
		},
	}
	db, svc, user, family := newClassifierFixture(t, fake)

	old := seedList(t, db, family.ID, "Butikken", "Ting fra butikken")
	kept := seedNote(t, db, family.ID, user.ID, old.ID, "kjøp smør", false)

	result, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk")
	require.NoError(t, err)
	require.True(t, result.RenamedList)
	require.False(t, result.CreatedList)
	require.Equal(t, old.ID, result.List.ID)
	require.Equal(t, "Handleliste", result.List.Name)

	var stored models.NoteList
	require.NoError(t, db.First(&stored, "id = ?", old.ID).Error)
	require.Equal(t, "Handleliste", stored.Name)

	// Rename happens in place: the old list's notes stay attached, the
	// new note joins them.
	var notes []models.Note
	require.NoError(t, db.Where("list_id = ?", old.ID).Find(&notes).Error)
	require.Len(t, notes, 2)
	descriptions := []string{notes[0].Description, notes[1].Description}
	require.Contains(t, descriptions, kept.Description)
	require.Contains(t, descriptions, "kjøp melk")
}

func TestClassifyAndAddNameMatchIsCaseSensitive(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes: []ai.NoteDraft{{Description: "kjøp brød"}},
			List:  ai.ListInfo{Name: "handleliste", Description: "Ting vi må kjøpe"},
		},
	}
	db, svc, user, family := newClassifierFixture(t, fake)

	existing := seedList(t, db, family.ID, "Handleliste", "Ting vi må kjøpe")

	result, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp brød")
	require.NoError(t, err)
	require.True(t, result.CreatedList)
	require.NotEqual(t, existing.ID, result.List.ID)

	var count int64
	require.NoError(t, db.Model(&models.NoteList{}).Where("family_id = ?", family.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestClassifyAndAddRenameTargetGoneFallsBack(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes:                    []ai.NoteDraft{{Description: "kjøp melk"}},
			List:                     ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
			ExistingListNameToRename: "Finnes ikke",
		},
	}
	db, svc, user, family := newClassifierFixture(t, fake)

	result, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk")
	require.NoError(t, err)
	require.True(t, result.CreatedList)

	var count int64
	require.NoError(t, db.Model(&models.NoteList{}).Where("family_id = ?", family.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestClassifyAndAddSplitsIntoMultipleNotes(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes: []ai.NoteDraft{
				{Description: "kjøp melk"},
				{Description: "kjøp brød"},
				{Description: "kjøp egg"},
			},
			List: ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
		},
	}
	db, svc, user, _ := newClassifierFixture(t, fake)

	result, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk, brød og egg")
	require.NoError(t, err)
	require.Len(t, result.Notes, 3)

	var count int64
	require.NoError(t, db.Model(&models.Note{}).Where("list_id = ?", result.List.ID).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestClassifyAndAddMarksSummaryStale(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			Notes: []ai.NoteDraft{{Description: "kjøp melk"}},
			List:  ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
		},
	}
	db, svc, user, family := newClassifierFixture(t, fake)

	require.NoError(t, db.Create(&models.Summary{
		FamilyID: family.ID,
		Summary:  "alt i orden",
		IsStale:  false,
		Date:     "2026-08-29",
	}).Error)

	_, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk")
	require.NoError(t, err)

	var summary models.Summary
	require.NoError(t, db.First(&summary, "family_id = ?", family.ID).Error)
	require.True(t, summary.IsStale)
}

func TestClassifyAndAddFailureWritesNothing(t *testing.T) {
	fake := &fakeAIClient{classifyErr: ai.ErrNoResult}
	db, svc, user, family := newClassifierFixture(t, fake)

	_, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk")
	require.ErrorIs(t, err, ErrClassificationFailed)

	var lists, notes int64
	require.NoError(t, db.Model(&models.NoteList{}).Where("family_id = ?", family.ID).Count(&lists).Error)
	require.NoError(t, db.Model(&models.Note{}).Where("family_id = ?", family.ID).Count(&notes).Error)
	require.Zero(t, lists)
	require.Zero(t, notes)
}

func TestClassifyAndAddEmptyVerdictFails(t *testing.T) {
	fake := &fakeAIClient{
		assignment: &ai.Assignment{
			List: ai.ListInfo{Name: "Handleliste", Description: "Ting vi må kjøpe"},
		},
	}
	_, svc, user, _ := newClassifierFixture(t, fake)

	_, err := svc.ClassifyAndAdd(context.Background(), user.ID, "kjøp melk")
	require.ErrorIs(t, err, ErrClassificationFailed)
}

func TestClassifyAndAddRequiresFamily(t *testing.T) {
	fake := &fakeAIClient{}
	db, svc, _, _ := newClassifierFixture(t, fake)

	loner := seedUser(t, db, "loner", nil)
	_, err := svc.ClassifyAndAdd(context.Background(), loner.ID, "kjøp melk")
	require.ErrorIs(t, err, ErrNotInFamily)
	require.Empty(t, fake.classifyRequests)
}
