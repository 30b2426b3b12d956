// Package handlers translates HTTP requests into service calls and
// renders the shared response envelope.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/internal/middleware"
	apperrors "github.com/famboard/famboard/pkg/errors"
)

// currentUserID returns the authenticated caller's user id or an
// unauthorized error when the auth middleware did not run.
func currentUserID(c *gin.Context) (string, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}
