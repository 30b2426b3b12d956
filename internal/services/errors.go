package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/famboard/famboard/pkg/errors"
)

// Domain error taxonomy. Note/list lookups deliberately share one generic
// not-found error with ownership mismatches so cross-family probing cannot
// distinguish "does not exist" from "not yours".
var (
	// ErrUserNotFound indicates the authenticated principal has no user record.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrNotInFamily indicates the caller has not created or joined a family yet.
	ErrNotInFamily = apperrors.New("NOT_IN_FAMILY", "You are not in a family", http.StatusForbidden)
	// ErrAlreadyInFamily blocks joining or creating while already a member.
	ErrAlreadyInFamily = apperrors.New("ALREADY_IN_FAMILY", "You are already in a family", http.StatusConflict)
	// ErrFamilyNotFound indicates a dangling family reference.
	ErrFamilyNotFound = apperrors.New("FAMILY_NOT_FOUND", "Family not found", http.StatusNotFound)
	// ErrNoteNotFound covers both missing notes and notes owned by another family.
	ErrNoteNotFound = apperrors.New("NOTE_NOT_FOUND", "Note not found", http.StatusNotFound)
	// ErrListNotFound covers both missing lists and lists owned by another family.
	ErrListNotFound = apperrors.New("LIST_NOT_FOUND", "List not found", http.StatusNotFound)
	// ErrListNotCompleted blocks deletion of a list that still has open notes.
	ErrListNotCompleted = apperrors.New("LIST_NOT_COMPLETED", "Not all notes are completed", http.StatusConflict)
	// ErrInvalidInviteCode covers never-issued, expired and swept codes alike.
	ErrInvalidInviteCode = apperrors.New("INVALID_INVITE_CODE", "Invalid invite code", http.StatusNotFound)
	// ErrClassificationFailed surfaces an unusable classifier response.
	ErrClassificationFailed = apperrors.New("CLASSIFICATION_FAILED", "The note could not be classified", http.StatusBadGateway)
	// ErrSummaryFailed surfaces an unusable summarizer response.
	ErrSummaryFailed = apperrors.New("SUMMARY_FAILED", "The summary could not be generated", http.StatusBadGateway)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
