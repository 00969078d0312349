// Package executor is the public entry point of the lifecycle core. Given a
// reservation id and an event it rehydrates the machine, validates and
// applies the transition, persists the new snapshot, and dispatches entry
// effects — serializing concurrent requests per reservation id.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/roomflow/internal/logging"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/machine"
	"github.com/aretw0/roomflow/pkg/persistence"
	"github.com/aretw0/roomflow/pkg/ports"
)

// lockTTL bounds distributed lock held time; a transition is a single
// read-validate-write cycle and never approaches this.
const lockTTL = 30 * time.Second

// lockEntry holds a per-reservation mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// ProfileFor resolves a tenant identifier to its behavior profile. Tenant
// configuration loading lives with the host; the executor only consumes the
// mapping.
type ProfileFor func(tenant string) machine.ProfileKind

// Executor coordinates transition execution. Safe for concurrent use;
// different reservations proceed fully independently.
type Executor struct {
	store      ports.DocumentStore
	machines   map[machine.ProfileKind]*machine.Machine
	profileFor ProfileFor
	rehydrator *persistence.Rehydrator
	dispatcher ports.EffectDispatcher
	observer   ports.Observer
	locker     ports.DistributedLocker
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// Option configures the Executor.
type Option func(*Executor)

// WithDispatcher sets the side-effect dispatcher. Defaults to a no-op.
func WithDispatcher(d ports.EffectDispatcher) Option {
	return func(e *Executor) { e.dispatcher = d }
}

// WithObserver sets the telemetry observer. Defaults to a no-op.
func WithObserver(o ports.Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithDistributedLocker extends per-id serialization across replicas.
func WithDistributedLocker(l ports.DistributedLocker) Option {
	return func(e *Executor) { e.locker = l }
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithRehydrator overrides the default rehydrator.
func WithRehydrator(r *persistence.Rehydrator) Option {
	return func(e *Executor) { e.rehydrator = r }
}

// New builds an Executor over a document store and the per-profile machines.
func New(store ports.DocumentStore, machines map[machine.ProfileKind]*machine.Machine, profileFor ProfileFor, opts ...Option) *Executor {
	e := &Executor{
		store:      store,
		machines:   machines,
		profileFor: profileFor,
		rehydrator: persistence.NewRehydrator(),
		dispatcher: ports.NopDispatcher{},
		observer:   ports.NopObserver{},
		logger:     logging.NewNop(),
		locks:      make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result reports a successful transition.
type Result struct {
	Success  bool   `json:"success"`
	NewState string `json:"newState"`
}

// Create starts tracking a new reservation: the machine enters Requested,
// settles (which may auto-approve or route a VIP booking straight into the
// services region), and the first snapshot is persisted.
func (e *Executor) Create(ctx context.Context, c domain.Context) (Result, error) {
	m, err := e.machineFor(c.Tenant)
	if err != nil {
		return Result{}, err
	}
	var result Result
	err = e.withLock(ctx, c.ReservationID, func(ctx context.Context) error {
		snap, effects, err := m.Start(c)
		if err != nil {
			return err
		}
		if dec := m.Evaluate(c); !dec.Eligible {
			e.observer.AutoApprovalRejected(c.Tenant, dec.Reason)
		}
		if err := e.persist(ctx, c.ReservationID, snap); err != nil {
			return err
		}
		e.observer.TransitionApplied(c.Tenant, "create", "", snap.Value.String())
		e.dispatch(ctx, effects)
		result = Result{Success: true, NewState: snap.Value.String()}
		return nil
	})
	return result, err
}

// Execute runs one transition for a reservation. The in-memory transition is
// discarded on any persistence failure; it is never partially applied.
func (e *Executor) Execute(ctx context.Context, reservationID string, event domain.Event, payload domain.Payload) (Result, error) {
	var result Result
	err := e.withLock(ctx, reservationID, func(ctx context.Context) error {
		m, snap, err := e.rehydrate(ctx, reservationID)
		if err != nil {
			return err
		}
		from := snap.Value.String()

		effects, err := m.Apply(snap, event, payload)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				e.observer.TransitionRejected(snap.Context.Tenant, string(event), from)
			}
			return err
		}
		if err := e.persist(ctx, reservationID, snap); err != nil {
			return err
		}
		e.observer.TransitionApplied(snap.Context.Tenant, string(event), from, snap.Value.String())
		e.dispatch(ctx, effects)
		result = Result{Success: true, NewState: snap.Value.String()}
		return nil
	})
	return result, err
}

// AvailableTransitions lists the event names currently accepted for a
// reservation, with service-scoped events expanded per service.
func (e *Executor) AvailableTransitions(ctx context.Context, reservationID string) ([]string, error) {
	var events []string
	err := e.withLock(ctx, reservationID, func(ctx context.Context) error {
		m, snap, err := e.rehydrate(ctx, reservationID)
		if err != nil {
			return err
		}
		events = m.AvailableEvents(snap)
		return nil
	})
	return events, err
}

// Migrate synthesizes and persists a snapshot for a pre-machine booking from
// its flat status field.
func (e *Executor) Migrate(ctx context.Context, tenant, reservationID, legacyStatus string) (Result, error) {
	m, err := e.machineFor(tenant)
	if err != nil {
		return Result{}, err
	}
	var result Result
	err = e.withLock(ctx, reservationID, func(ctx context.Context) error {
		snap, err := e.rehydrator.MigrateFromStatus(m, tenant, reservationID, legacyStatus)
		if err != nil {
			return err
		}
		if err := e.persist(ctx, reservationID, snap); err != nil {
			return err
		}
		result = Result{Success: true, NewState: snap.Value.String()}
		return nil
	})
	return result, err
}

// rehydrate loads the record and produces a live snapshot plus the machine
// for its tenant. Callers hold the per-id lock.
func (e *Executor) rehydrate(ctx context.Context, reservationID string) (*machine.Machine, *domain.Snapshot, error) {
	record, err := e.store.Get(ctx, reservationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load reservation %q: %w", reservationID, err)
	}
	m, err := e.machineFor(persistence.TenantOf(record))
	if err != nil {
		return nil, nil, err
	}
	snap, err := e.rehydrator.Rehydrate(record, m, reservationID)
	if err != nil {
		return nil, nil, err
	}
	return m, snap, nil
}

func (e *Executor) machineFor(tenant string) (*machine.Machine, error) {
	kind := machine.ProfileBasic
	if e.profileFor != nil {
		kind = e.profileFor(tenant)
	}
	m, ok := e.machines[kind]
	if !ok {
		return nil, fmt.Errorf("no machine configured for profile %q (tenant %q)", kind, tenant)
	}
	return m, nil
}

func (e *Executor) persist(ctx context.Context, reservationID string, snap *domain.Snapshot) error {
	fields, err := persistence.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := e.store.Put(ctx, reservationID, fields); err != nil {
		return fmt.Errorf("persist reservation %q: %w", reservationID, err)
	}
	return nil
}

// dispatch fires entry effects after the snapshot write has landed. Effect
// failures are logged and swallowed; they never surface as transition
// failures.
func (e *Executor) dispatch(ctx context.Context, effects []domain.EffectRequest) {
	for _, req := range effects {
		if err := e.dispatcher.Dispatch(ctx, req); err != nil {
			e.logger.Warn("effect dispatch failed",
				"effect", string(req.Effect),
				"reservation", req.ReservationID,
				"state", req.State,
				"err", err)
		}
	}
}

// withLock serializes work per reservation id. Lock entries are reference
// counted and garbage collected when idle. When a distributed locker is
// configured it is acquired inside the local lock, so intra-process callers
// never contend on the network path.
func (e *Executor) withLock(ctx context.Context, reservationID string, fn func(ctx context.Context) error) error {
	entry := e.acquire(reservationID)
	defer e.release(reservationID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, reservationID, lockTTL)
		if err != nil {
			return fmt.Errorf("acquire distributed lock for %q: %w", reservationID, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				e.logger.Warn("failed to release distributed lock",
					"reservation", reservationID, "err", err)
			}
		}()
	}
	return fn(ctx)
}

func (e *Executor) acquire(reservationID string) *lockEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.locks[reservationID]
	if !ok {
		entry = &lockEntry{}
		e.locks[reservationID] = entry
	}
	entry.refs++
	return entry
}

func (e *Executor) release(reservationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.locks[reservationID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(e.locks, reservationID)
	}
}
