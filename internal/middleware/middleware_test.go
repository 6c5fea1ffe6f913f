package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(engine, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	for _, bad := range []string{strings.Repeat("a", 129), "has space", "tab\there", "caf\u00e9"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, bad)
		w = serve(engine, req)
		assert.NotEqual(t, bad, w.Header().Get(HeaderXRequestID), bad)
		assert.Len(t, w.Header().Get(HeaderXRequestID), 36, bad)
	}
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"errors":["Internal server error"]}`, w.Body.String())
}

func TestRecoveryLogsWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	engine := gin.New()
	engine.Use(RequestID(), Recovery(), Logger(zerolog.New(&buf)))
	engine.GET("/users/:id", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	req.Header.Set(HeaderXRequestID, "rid-42")
	w := serve(engine, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	out := buf.String()
	assert.Contains(t, out, `"message":"handler panicked"`)
	assert.Contains(t, out, `"request_id":"rid-42"`)
	assert.Contains(t, out, `"route":"/users/:id"`)
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	engine := gin.New()
	engine.Use(RequestID(), Logger(zerolog.New(&buf)))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/ok?email=house@example.com", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[0], `"path":"/ok"`)
	assert.Contains(t, lines[0], `"request_id"`)
	assert.NotContains(t, lines[0], "house@example.com")
	assert.Contains(t, lines[1], `"level":"warn"`)
}

func TestErrorLogger(t *testing.T) {
	var buf bytes.Buffer
	engine := gin.New()
	engine.Use(ErrorLogger(zerolog.New(&buf)))
	engine.GET("/written", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.JSON(http.StatusBadGateway, gin.H{"errors": []string{"upstream"}})
	})
	engine.GET("/internal", func(c *gin.Context) { _ = c.Error(assert.AnError) })
	engine.GET("/rejected", func(c *gin.Context) {
		_ = c.Error(apperrors.Validation(http.StatusBadRequest, []string{"Missing required field: email"}))
	})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"errors":["upstream"]}`, w.Body.String())
	assert.Contains(t, buf.String(), assert.AnError.Error())
	assert.Contains(t, buf.String(), `"level":"error"`)

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"errors":["Internal server error"]}`, w.Body.String())

	buf.Reset()
	w = serve(engine, httptest.NewRequest(http.MethodGet, "/rejected", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":["Missing required field: email"]}`, w.Body.String())
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"route":"/rejected"`)
}

func TestRateLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(NewRateLimiter(RateLimiterConfig{Rate: 0.5, Burst: 2}).RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		return req
	}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, from("192.0.2.1:1000")).Code)
	}
	w := serve(engine, from("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"errors":["Rate limit exceeded."]}`, w.Body.String())

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, serve(engine, from("192.0.2.2:1000")).Code)
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name    string
		origins []string
		origin  string
		allowed string
	}{
		{"wildcard", []string{"*"}, "http://localhost:19006", "*"},
		{"listed", []string{"http://localhost:19006"}, "http://localhost:19006", "http://localhost:19006"},
		{"unlisted", []string{"http://localhost:19006"}, "http://evil.example", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(CORS(tc.origins))
			engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tc.origin)
			w := serve(engine, req)
			assert.Equal(t, tc.allowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(SizeLimit(8))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	m := metrics.NewServerMetrics("mockapi", prometheus.NewRegistry())
	engine := gin.New()
	engine.Use(Metrics(m))
	engine.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/users/7", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/users/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorTotal.WithLabelValues(http.MethodGet, "/users/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders(DefaultSecurityConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	cfg := DefaultSecurityConfig()
	cfg.HSTSMaxAge = 60
	engine = gin.New()
	engine.Use(SecurityHeaders(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "max-age=60; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
}

func TestTimeout(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(10 * time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	engine.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"errors":["Request timeout."]}`, w.Body.String())

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
