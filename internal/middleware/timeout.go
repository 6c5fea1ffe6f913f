package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medops-mobile/pkg/httputil"
)

const (
	DefaultTimeout = 30 * time.Second
	MsgTimeout     = "Request timeout."
)

// Timeout puts a deadline on the request context. Handlers see it through
// c.Request.Context(); one that gives up without writing gets a 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			httputil.RespondWithErrors(c, http.StatusGatewayTimeout, MsgTimeout)
		}
	}
}
