package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/jwalitptl/medops-mobile/internal/api"
	"github.com/jwalitptl/medops-mobile/internal/cli"
	"github.com/jwalitptl/medops-mobile/internal/config"
	"github.com/jwalitptl/medops-mobile/internal/service/auth"
	"github.com/jwalitptl/medops-mobile/internal/service/role"
	"github.com/jwalitptl/medops-mobile/internal/service/user"
	"github.com/jwalitptl/medops-mobile/internal/session"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
	"github.com/jwalitptl/medops-mobile/pkg/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		return 1
	}

	flags := pflag.NewFlagSet("medops", pflag.ContinueOnError)
	// global flags go before the command, the rest belongs to it
	flags.SetInterspersed(false)
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log := logger.NewLogger(cfg.LoggerConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(cfg.Metrics.Namespace, reg)

	store, closer, err := session.Open(ctx, cfg.SessionConfig(),
		session.WithLogger(log), session.WithMetrics(m))
	if err != nil {
		log.Error(err, "failed to open session store", "backend", cfg.Session.Backend)
		return 1
	}
	defer closer.Close()

	client := api.NewClient(cfg.BaseURL, api.WithLogger(log), api.WithMetrics(m))
	app := cli.NewApp(cli.Deps{
		Auth:    auth.NewService(client, log),
		Roles:   role.NewService(client),
		Users:   user.NewService(client, log),
		Session: store,
		Policy:  cfg.AssignmentPolicy(),
		Logger:  log,
	}, os.Stdout)

	code := 0
	if err := app.Run(ctx, flags.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
		if errors.Is(err, cli.ErrUsage) {
			code = 2
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); err != nil {
			log.Error(err, "failed to write metrics", "path", cfg.Metrics.Textfile)
		}
	}
	return code
}
