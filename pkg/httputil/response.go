package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medops-mobile/internal/model"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
)

// MsgInternal replaces the text of errors that are not AppErrors.
const MsgInternal = "Internal server error"

// RespondWithJSON writes data with the given status
func RespondWithJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// RespondWithErrors writes the {"errors": [...]} envelope
func RespondWithErrors(c *gin.Context, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	c.JSON(status, model.ErrorResponse{Errors: messages})
}

// RespondWithError maps err onto a status and error list. Validation errors
// keep their messages, not found errors their text, anything else is a 500.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		RespondWithErrors(c, http.StatusInternalServerError, MsgInternal)
		return
	}

	status := appErr.Status
	switch appErr.Code {
	case apperrors.ErrValidation:
		if status == 0 {
			status = http.StatusBadRequest
		}
		messages := appErr.Messages
		if len(messages) == 0 {
			messages = []string{appErr.Message}
		}
		RespondWithErrors(c, status, messages...)
	case apperrors.ErrNotFound:
		RespondWithErrors(c, http.StatusNotFound, appErr.Message)
	default:
		if status == 0 {
			status = http.StatusInternalServerError
		}
		_ = c.Error(err)
		RespondWithErrors(c, status, appErr.Message)
	}
}
