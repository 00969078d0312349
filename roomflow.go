package roomflow

import (
	"context"
	"log/slog"

	"github.com/aretw0/roomflow/internal/logging"
	"github.com/aretw0/roomflow/pkg/adapters/memory"
	"github.com/aretw0/roomflow/pkg/approval"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/executor"
	"github.com/aretw0/roomflow/pkg/machine"
	"github.com/aretw0/roomflow/pkg/persistence"
	"github.com/aretw0/roomflow/pkg/ports"
)

// Engine is the high-level entry point for embedding the lifecycle core.
// It wraps the transition executor with both tenant profiles wired and an
// in-memory store by default; hosts running a fleet swap in the redis
// adapters through options.
type Engine struct {
	exec *executor.Executor

	store      ports.DocumentStore
	locker     ports.DistributedLocker
	dispatcher ports.EffectDispatcher
	observer   ports.Observer
	profileFor executor.ProfileFor
	fallback   map[domain.Role]domain.HourLimits
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a document store, replacing the in-memory default.
func WithStore(store ports.DocumentStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithDistributedLocker extends per-reservation serialization across replicas.
func WithDistributedLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithDispatcher sets the side-effect dispatcher.
func WithDispatcher(d ports.EffectDispatcher) Option {
	return func(e *Engine) { e.dispatcher = d }
}

// WithObserver registers a telemetry observer.
func WithObserver(o ports.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithProfileFor sets the tenant-to-profile mapping. Tenants resolve to the
// basic profile when unset.
func WithProfileFor(fn executor.ProfileFor) Option {
	return func(e *Engine) { e.profileFor = fn }
}

// WithFallbackLimits sets the auto-approval hour-limit table consulted for
// resources without their own limit entries.
func WithFallbackLimits(limits map[domain.Role]domain.HourLimits) Option {
	return func(e *Engine) { e.fallback = limits }
}

// WithLogger sets a structured logger for the executor and rehydrator.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New assembles an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:  memory.NewStore(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	limits := approval.StaticLimits{Fallback: e.fallback}
	machines := map[machine.ProfileKind]*machine.Machine{
		machine.ProfileBasic: machine.New(machine.ProfileBasic, limits),
		machine.ProfileFull:  machine.New(machine.ProfileFull, limits),
	}

	execOpts := []executor.Option{
		executor.WithLogger(e.logger),
		executor.WithRehydrator(persistence.NewRehydrator(persistence.WithLogger(e.logger))),
	}
	if e.dispatcher != nil {
		execOpts = append(execOpts, executor.WithDispatcher(e.dispatcher))
	}
	if e.observer != nil {
		execOpts = append(execOpts, executor.WithObserver(e.observer))
	}
	if e.locker != nil {
		execOpts = append(execOpts, executor.WithDistributedLocker(e.locker))
	}

	e.exec = executor.New(e.store, machines, e.profileFor, execOpts...)
	return e
}

// Create starts tracking a new reservation, running auto-approval and any
// immediate routing before the first snapshot is persisted.
func (e *Engine) Create(ctx context.Context, c domain.Context) (executor.Result, error) {
	return e.exec.Create(ctx, c)
}

// Transition validates and applies one lifecycle event.
func (e *Engine) Transition(ctx context.Context, reservationID string, event domain.Event, payload domain.Payload) (executor.Result, error) {
	return e.exec.Execute(ctx, reservationID, event, payload)
}

// AvailableTransitions lists the events a reservation currently accepts.
func (e *Engine) AvailableTransitions(ctx context.Context, reservationID string) ([]string, error) {
	return e.exec.AvailableTransitions(ctx, reservationID)
}

// Migrate adopts a pre-machine booking from its flat status field.
func (e *Engine) Migrate(ctx context.Context, tenant, reservationID, legacyStatus string) (executor.Result, error) {
	return e.exec.Migrate(ctx, tenant, reservationID, legacyStatus)
}

// SweepDeclined fires the declined-timeout event across all stored bookings
// and returns how many moved on.
func (e *Engine) SweepDeclined(ctx context.Context) (int, error) {
	return e.exec.SweepDeclined(ctx)
}

// Executor exposes the underlying executor for hosts that mount the HTTP
// adapter directly.
func (e *Engine) Executor() *executor.Executor {
	return e.exec
}
