package router

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medops-mobile/internal/config"
	"github.com/jwalitptl/medops-mobile/internal/handler/health"
	prometheusHandler "github.com/jwalitptl/medops-mobile/internal/handler/prometheus"
	"github.com/jwalitptl/medops-mobile/internal/handler/rbac"
	"github.com/jwalitptl/medops-mobile/internal/handler/user"
	"github.com/jwalitptl/medops-mobile/internal/repository/memory"
	"github.com/jwalitptl/medops-mobile/internal/service/directory"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
	"github.com/jwalitptl/medops-mobile/pkg/metrics"
	"github.com/jwalitptl/medops-mobile/pkg/security"
	"github.com/jwalitptl/medops-mobile/pkg/validator"
)

// MetricsNamespace prefixes the stub backend's collectors.
const MetricsNamespace = "mockapi"

type MockAPIOptions struct {
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it.
	BcryptCost int
}

// NewMockAPI wires the in-memory stub backend and returns a ready router and
// the directory behind it.
func NewMockAPI(ctx context.Context, cfg *config.MockAPIConfig, log *logger.Logger, reg *prometheus.Registry, opts MockAPIOptions) (*Router, *directory.Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	store := memory.NewStore()
	svc := directory.NewService(store, store, security.NewBcryptHasher(opts.BcryptCost), log)
	if cfg.Seed {
		if err := svc.Seed(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to seed directory: %w", err)
		}
	}

	ready := func(ctx context.Context) error {
		_, err := store.ListRoles(ctx)
		return err
	}

	r := NewRouter(RouterConfig{
		RateLimit:      rate.Limit(cfg.RateLimit),
		RateBurst:      cfg.RateBurst,
		AllowedOrigins: cfg.Origins(),
		Logger:         *log.Zerolog(),
		Metrics:        metrics.NewServerMetrics(MetricsNamespace, reg),
	},
		health.NewHandler(ready),
		prometheusHandler.New(reg),
		user.NewHandler(svc, validator.New()),
		rbac.NewHandler(svc),
	)
	r.Setup()
	return r, svc, nil
}
