package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/database"
	"github.com/famboard/famboard/internal/models"
	"github.com/famboard/famboard/internal/scheduler"
)

func openServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, familyID *string) *models.User {
	t.Helper()

	user := models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "irrelevant",
		DisplayName: username,
		FamilyID:    familyID,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedFamily(t *testing.T, db *gorm.DB, creator *models.User, language string) *models.Family {
	t.Helper()

	family := models.Family{
		CreatedBy:   creator.ID,
		Description: "A family of testers",
		Language:    language,
		MemberIDs:   []string{creator.ID},
	}
	require.NoError(t, db.Create(&family).Error)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", creator.ID).
		Update("family_id", family.ID).Error)

	creator.FamilyID = &family.ID
	return &family
}

func seedList(t *testing.T, db *gorm.DB, familyID, name, description string) *models.NoteList {
	t.Helper()

	list := models.NoteList{Name: name, Description: description, FamilyID: familyID}
	require.NoError(t, db.Create(&list).Error)
	return &list
}

func seedNote(t *testing.T, db *gorm.DB, familyID, userID, listID, description string, completed bool) *models.Note {
	t.Helper()

	note := models.Note{
		Description: description,
		FamilyID:    familyID,
		UserID:      userID,
		ListID:      listID,
		IsCompleted: completed,
	}
	require.NoError(t, db.Create(&note).Error)
	return &note
}

// fakeAIClient returns canned responses and records the requests it saw.
type fakeAIClient struct {
	assignment  *ai.Assignment
	classifyErr error

	summaryText string
	summaryErr  error

	classifyRequests []ai.ClassificationRequest
	summaryRequests  []ai.SummaryRequest
}

func (f *fakeAIClient) ClassifyNote(_ context.Context, req ai.ClassificationRequest) (*ai.Assignment, error) {
	f.classifyRequests = append(f.classifyRequests, req)
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	return f.assignment, nil
}

func (f *fakeAIClient) Summarize(_ context.Context, req ai.SummaryRequest) (string, error) {
	f.summaryRequests = append(f.summaryRequests, req)
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	return f.summaryText, nil
}

// recordingScheduler captures scheduled tasks so tests can fire them on demand.
type recordingScheduler struct {
	delays []time.Duration
	names  []string
	tasks  []scheduler.Task
}

func (r *recordingScheduler) RunAfter(delay time.Duration, name string, task scheduler.Task) {
	r.delays = append(r.delays, delay)
	r.names = append(r.names, name)
	r.tasks = append(r.tasks, task)
}

func (r *recordingScheduler) fireAll(ctx context.Context) {
	for _, task := range r.tasks {
		task(ctx)
	}
}
