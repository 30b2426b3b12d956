// Package ai defines the contract between the organizer core and the
// language-model service that classifies notes and writes summaries. The
// production implementation talks to OpenAI; tests substitute a fake.
package ai

import (
	"context"
	"errors"
	"time"
)

// ErrNoResult signals that the model returned nothing usable: an empty
// completion, or a classification payload that did not parse against the
// expected shape. Callers map it to their own failure types.
var ErrNoResult = errors.New("ai: no parseable result")

// ListInfo describes one existing list presented to the classifier.
type ListInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NoteDraft is a single atomic note produced by the classifier. One input
// may be split into several drafts.
type NoteDraft struct {
	Description string `json:"description"`
}

// Assignment is the classifier's structured verdict for one submitted note.
type Assignment struct {
	Notes []NoteDraft `json:"notes"`
	List  ListInfo    `json:"list"`
	// ExistingListNameToRename, when set, names a current list that should
	// be renamed to List.Name/List.Description and receive the new notes.
	ExistingListNameToRename string `json:"existing_list_name_to_rename,omitempty"`
}

// ClassificationRequest carries everything the classifier needs to place a
// note: the raw text, the family's current list catalogue, and the natural
// language all output must be written in.
type ClassificationRequest struct {
	NoteText       string
	ExistingLists  []ListInfo
	OutputLanguage string
}

// SummaryNote is one note presented to the summarizer.
type SummaryNote struct {
	Description string
	IsCompleted bool
}

// SummaryRequest carries the family profile and full note state for digest
// generation.
type SummaryRequest struct {
	FamilyDescription string
	OutputLanguage    string
	Today             time.Time
	Notes             []SummaryNote
}

// Client is the language-model service consumed by the classification and
// summary components. Both calls may block on the network for a meaningful
// amount of time and must never run inside a store transaction.
type Client interface {
	ClassifyNote(ctx context.Context, req ClassificationRequest) (*Assignment, error)
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}
