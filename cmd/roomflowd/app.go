package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/roomflow/internal/logging"
	"github.com/aretw0/roomflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/roomflow/pkg/adapters/redis"
	"github.com/aretw0/roomflow/pkg/approval"
	"github.com/aretw0/roomflow/pkg/executor"
	"github.com/aretw0/roomflow/pkg/machine"
	"github.com/aretw0/roomflow/pkg/observability"
	"github.com/aretw0/roomflow/pkg/persistence"
	"github.com/aretw0/roomflow/pkg/ports"
)

// app holds the wired components shared by the serve, sweep, and migrate
// commands.
type app struct {
	cfg      Config
	logger   *slog.Logger
	exec     *executor.Executor
	registry *prometheus.Registry
}

func buildApp(configPath string) (*app, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	limits := approval.StaticLimits{Fallback: cfg.FallbackLimits()}
	machines := map[machine.ProfileKind]*machine.Machine{
		machine.ProfileBasic: machine.New(machine.ProfileBasic, limits),
		machine.ProfileFull:  machine.New(machine.ProfileFull, limits),
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	opts := []executor.Option{
		executor.WithLogger(logger),
		executor.WithObserver(metrics),
		executor.WithRehydrator(persistence.NewRehydrator(persistence.WithLogger(logger))),
	}

	var store ports.DocumentStore
	if cfg.Store == "redis" {
		client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
		var storeOpts []redisAdapter.StoreOption
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
		}
		store = redisAdapter.NewFromClient(client, storeOpts...)
		opts = append(opts, executor.WithDistributedLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix)))
	} else {
		store = memory.NewStore()
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		exec:     executor.New(store, machines, cfg.ProfileFor, opts...),
		registry: registry,
	}, nil
}
