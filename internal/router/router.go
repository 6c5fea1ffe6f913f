package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medops-mobile/internal/middleware"
	"github.com/jwalitptl/medops-mobile/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	handlers []Handler
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	MaxBodySize    int64
	Timeout        time.Duration
	Logger         zerolog.Logger
	Metrics        *metrics.ServerMetrics
}

func NewRouter(config RouterConfig, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.MaxBodySize == 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}
	if config.Timeout == 0 {
		config.Timeout = middleware.DefaultTimeout
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(config.Logger),
		middleware.ErrorLogger(config.Logger),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	engine.Use(middleware.CORS(config.AllowedOrigins))
	if config.RateLimit > 0 {
		engine.Use(middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		}).RateLimit())
	}
	engine.Use(
		middleware.SizeLimit(config.MaxBodySize),
		middleware.Timeout(config.Timeout),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
	)

	return &Router{engine: engine, handlers: handlers}
}

// Setup mounts every handler at the root; the mobile app has no path prefix.
func (r *Router) Setup() {
	root := r.engine.Group("")
	for _, h := range r.handlers {
		h.RegisterRoutes(root)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
