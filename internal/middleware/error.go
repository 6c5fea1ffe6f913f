package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/httputil"
)

// ErrorLogger logs errors handlers attached with c.Error. Rejections the
// client caused (validation, not found) log at warn, the rest at error. A
// handler that attached an error without responding gets the errors
// envelope for the last one.
func ErrorLogger(zl zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		l := zl.With().
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("route", route(c)).
			Logger()

		for _, e := range c.Errors {
			event := l.Error()
			if apperrors.Is(e.Err, apperrors.ErrValidation) || apperrors.Is(e.Err, apperrors.ErrNotFound) {
				event = l.Warn()
			}
			event.Err(e.Err).Msg("Request error")
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, c.Errors.Last().Err)
		}
	}
}
