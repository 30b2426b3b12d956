package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/validator"
)

// bindAndValidate decodes the JSON body into dst and runs struct
// validation, returning a client-facing error on failure.
func bindAndValidate(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.NewBadRequest("Invalid request payload")
	}

	if err := validator.ValidateStruct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return apperrors.NewBadRequest(ve.Error())
		}
		return apperrors.NewBadRequest("Invalid request payload")
	}

	return nil
}
