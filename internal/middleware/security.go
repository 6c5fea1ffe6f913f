package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the response headers set on every API reply
type SecurityConfig struct {
	// HSTSMaxAge is sent only when positive; the stub usually runs over plain http.
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
	CSP                string
	CacheControl       string
}

// DefaultSecurityConfig suits a JSON-only API that returns patient records.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "no-referrer",
		CSP:                "default-src 'none'; frame-ancestors 'none'",
		CacheControl:       "no-store",
	}
}

func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.HSTSMaxAge > 0 {
			c.Header("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge))
		}
		set := func(name, value string) {
			if value != "" {
				c.Header(name, value)
			}
		}
		set("X-Frame-Options", config.FrameOptions)
		set("X-Content-Type-Options", config.ContentTypeOptions)
		set("Referrer-Policy", config.ReferrerPolicy)
		set("Content-Security-Policy", config.CSP)
		set("Cache-Control", config.CacheControl)

		c.Next()
	}
}
