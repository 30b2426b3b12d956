package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/auth"
	"github.com/famboard/famboard/internal/database"
	"github.com/famboard/famboard/internal/scheduler"
	"github.com/famboard/famboard/internal/services"
)

type stubAI struct {
	assignment *ai.Assignment
	summary    string
}

func (s *stubAI) ClassifyNote(context.Context, ai.ClassificationRequest) (*ai.Assignment, error) {
	if s.assignment == nil {
		return nil, ai.ErrNoResult
	}
	return s.assignment, nil
}

func (s *stubAI) Summarize(context.Context, ai.SummaryRequest) (string, error) {
	if s.summary == "" {
		return "", ai.ErrNoResult
	}
	return s.summary, nil
}

type dropScheduler struct{}

func (dropScheduler) RunAfter(time.Duration, string, scheduler.Task) {}

func newTestRouter(t *testing.T, client ai.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "famboard"})
	require.NoError(t, err)
	provider, err := auth.NewLocalProvider(db)
	require.NoError(t, err)

	users, err := services.NewUserService(db)
	require.NoError(t, err)
	notes, err := services.NewNoteService(db, users, nil)
	require.NoError(t, err)
	families, err := services.NewFamilyService(db, users, nil, dropScheduler{})
	require.NoError(t, err)
	classifier, err := services.NewClassifierService(db, users, notes, nil, client)
	require.NoError(t, err)
	summaries, err := services.NewSummaryService(db, users, notes, client)
	require.NoError(t, err)

	return NewRouter(Dependencies{
		DB:         db,
		JWTService: jwtService,
		Provider:   provider,
		Users:      users,
		Families:   families,
		Notes:      notes,
		Classifier: classifier,
		Summaries:  summaries,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dst))
	}
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":     username,
		"email":        username + "@example.com",
		"password":     "correct-horse",
		"display_name": username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var token struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &token)
	require.NotEmpty(t, token.Token)
	return token.Token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubAI{})

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t, &stubAI{})

	token := registerAndLogin(t, router, "alice")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Username string `json:"username"`
	}
	decodeData(t, rec, &me)
	require.Equal(t, "alice", me.Username)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteBoardFlow(t *testing.T) {
	stub := &stubAI{
		assignment: &ai.Assignment{
			Notes: []ai.NoteDraft{{Description: "buy milk"}},
			List:  ai.ListInfo{Name: "Groceries", Description: "Things to buy"},
		},
		summary: "A quiet week ahead. Keep it up!",
	}
	router := newTestRouter(t, stub)
	token := registerAndLogin(t, router, "bob")

	// Family-scoped calls are refused before joining a family.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/notes", token, gin.H{"text": "buy milk"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/family", token, gin.H{
		"description": "Two adults, one dog",
		"language":    "English",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/notes", token, gin.H{"text": "buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		CreatedList bool `json:"created_list"`
		Notes       []struct {
			ID string `json:"id"`
		} `json:"notes"`
	}
	decodeData(t, rec, &result)
	require.True(t, result.CreatedList)
	require.Len(t, result.Notes, 1)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/notes/"+result.Notes[0].ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/summary/generate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		Summary string `json:"summary"`
		IsStale bool   `json:"is_stale"`
	}
	decodeData(t, rec, &summary)
	require.Equal(t, stub.summary, summary.Summary)
	require.False(t, summary.IsStale)
}

func TestInviteJoinFlow(t *testing.T) {
	router := newTestRouter(t, &stubAI{})

	founderToken := registerAndLogin(t, router, "founder")
	rec := doJSON(t, router, http.MethodPost, "/api/v1/family", founderToken, gin.H{"language": "English"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/family/invite", founderToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var invite struct {
		Code string `json:"code"`
		TTL  int    `json:"ttl"`
	}
	decodeData(t, rec, &invite)
	require.Len(t, invite.Code, 4)
	require.Equal(t, 15, invite.TTL)

	joinerToken := registerAndLogin(t, router, "joiner")
	rec = doJSON(t, router, http.MethodPost, "/api/v1/family/join", joinerToken, gin.H{"code": invite.Code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/family/join", joinerToken, gin.H{"code": invite.Code})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/family/invite/qr", founderToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestClassificationFailureReturnsBadGateway(t *testing.T) {
	router := newTestRouter(t, &stubAI{})
	token := registerAndLogin(t, router, "carol")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/family", token, gin.H{"language": "English"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/notes", token, gin.H{"text": "buy milk"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	router := newTestRouter(t, &stubAI{})

	rec := doJSON(t, router, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
}
