package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medops-mobile/pkg/httputil"
)

// Recovery turns a handler panic into a 500 errors envelope. A panic with
// http.ErrAbortHandler is re-raised so net/http drops the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			requestLogger(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", c.Request.Method).
				Str("route", route(c)).
				Msg("handler panicked")

			if !c.Writer.Written() {
				httputil.RespondWithErrors(c, http.StatusInternalServerError, httputil.MsgInternal)
			}
			c.Abort()
		}()
		c.Next()
	}
}
