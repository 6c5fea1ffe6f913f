package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medops-mobile/pkg/httputil"
)

const MsgRateLimited = "Rate limit exceeded."

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTTL forgets a client's bucket after this long without requests.
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	clients *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL == 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:  config,
		clients: cache.New(config.IdleTTL, 2*config.IdleTTL),
	}
}

// limiter returns key's bucket and pushes back its expiry.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.clients.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	}
	rl.clients.SetDefault(key, l)
	return l.(*rate.Limiter)
}

// retryAfter is the whole seconds until one token refills, at least 1.
func (rl *RateLimiter) retryAfter() string {
	secs := 1.0
	if rl.config.Rate > 0 && !math.IsInf(float64(rl.config.Rate), 1) {
		secs = math.Max(1, math.Ceil(1/float64(rl.config.Rate)))
	}
	return strconv.Itoa(int(secs))
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", rl.retryAfter())
			httputil.RespondWithErrors(c, http.StatusTooManyRequests, MsgRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
