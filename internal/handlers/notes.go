package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/internal/services"
	"github.com/famboard/famboard/pkg/response"
)

// NotesHandler serves the note board: notes, lists and the summary.
type NotesHandler struct {
	notes      *services.NoteService
	classifier *services.ClassifierService
	summaries  *services.SummaryService
}

// NewNotesHandler creates a NotesHandler.
func NewNotesHandler(notes *services.NoteService, classifier *services.ClassifierService, summaries *services.SummaryService) *NotesHandler {
	return &NotesHandler{notes: notes, classifier: classifier, summaries: summaries}
}

type addNoteRequest struct {
	Text string `json:"text" validate:"required,notblank,max=2048"`
}

// List returns every note in the caller's family.
func (h *NotesHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	notes, err := h.notes.Notes(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, notes)
}

// Lists returns every note list in the caller's family.
func (h *NotesHandler) Lists(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	lists, err := h.notes.Lists(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lists)
}

// Add classifies free text into a list and stores the resulting notes.
func (h *NotesHandler) Add(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req addNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.classifier.ClassifyAndAdd(c.Request.Context(), userID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// Toggle flips a note's completion state.
func (h *NotesHandler) Toggle(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.notes.ToggleCompleted(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, note)
}

// ClearCompleted deletes every completed note in a list.
func (h *NotesHandler) ClearCompleted(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	deleted, err := h.notes.ClearCompleted(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

// DeleteList removes a fully completed list and its notes.
func (h *NotesHandler) DeleteList(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.notes.DeleteList(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Summary returns the cached family summary; the data payload is null
// until the first generation.
func (h *NotesHandler) Summary(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.notes.Summary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// GenerateSummary produces a fresh summary and stores it.
func (h *NotesHandler) GenerateSummary(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.summaries.Generate(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}
