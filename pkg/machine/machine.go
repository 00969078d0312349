package machine

import (
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/roomflow/pkg/approval"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/ports"
)

// ProfileKind selects the tenant behavior profile. The two profiles share the
// same vocabulary and one parameterized core; they differ only in the states
// and guarded transitions their tables wire up.
type ProfileKind string

const (
	// ProfileBasic has no pre-approval or service regions: Requested either
	// auto-approves or waits for a manual decision.
	ProfileBasic ProfileKind = "basic"
	// ProfileFull carries the pre-approval step and the parallel
	// services-request and service-closeout regions.
	ProfileFull ProfileKind = "full"
)

// Machine variant identifiers stored in snapshots. A rehydrated snapshot with
// a different variant is migrated rather than trusted.
const (
	VariantBasic = "lifecycle/basic-v1"
	VariantFull  = "lifecycle/full-v1"
)

// guardInput is everything a guard may consult. Guards are total functions:
// they return a boolean for every well-formed input and default to false on
// malformed context, never erroring.
type guardInput struct {
	c    domain.Context
	last time.Time
	now  time.Time
}

type guardFn func(in guardInput) bool

// transitionDef is one guarded edge. A nil guard always fires.
type transitionDef struct {
	target string
	guard  guardFn
}

// parallelDef configures a parallel composite state: which sub-workflow
// template its regions run and where completion goes.
type parallelDef struct {
	phase  phase
	onDone string
}

// stateDef is one row of the profile table.
type stateDef struct {
	entry    []domain.Effect
	events   map[domain.Event][]transitionDef
	always   []transitionDef
	parallel *parallelDef
}

// Machine is one tenant profile's lifecycle machine. It is stateless and
// safe for concurrent use: all instance data lives in the snapshot.
type Machine struct {
	kind    ProfileKind
	variant string
	caps    approval.Capabilities
	limits  ports.LimitResolver
	states  map[string]stateDef
	clock   func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the time source, for tests and deterministic replays.
func WithClock(clock func() time.Time) Option {
	return func(m *Machine) { m.clock = clock }
}

// New builds the machine for a profile. The limit resolver is injected by the
// host from tenant configuration.
func New(kind ProfileKind, limits ports.LimitResolver, opts ...Option) *Machine {
	m := &Machine{
		kind:   kind,
		limits: limits,
		clock:  time.Now,
	}
	switch kind {
	case ProfileFull:
		m.variant = VariantFull
		m.caps = approval.Capabilities{AutoApprove: true, VIP: true}
		m.states = fullProfile(m)
	default:
		m.kind = ProfileBasic
		m.variant = VariantBasic
		m.caps = approval.Capabilities{AutoApprove: true}
		m.states = basicProfile(m)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Kind returns the profile kind.
func (m *Machine) Kind() ProfileKind { return m.kind }

// Variant returns the identifier written into snapshots.
func (m *Machine) Variant() string { return m.variant }

// HasState reports whether a state name exists in this profile's table.
func (m *Machine) HasState(name string) bool {
	_, ok := m.states[name]
	return ok
}

// Evaluate runs the auto-approval evaluator with this profile's capabilities.
func (m *Machine) Evaluate(c domain.Context) approval.Decision {
	return approval.Evaluate(c, m.caps, m.limits)
}

// Start creates the initial snapshot for a new reservation: the machine
// enters Requested, emits its entry effects, and settles guarded
// auto-transitions (auto-approval, VIP service routing).
func (m *Machine) Start(c domain.Context) (*domain.Snapshot, []domain.EffectRequest, error) {
	snap := &domain.Snapshot{
		Context:        c.Clone(),
		MachineVariant: m.variant,
	}
	var effects []domain.EffectRequest
	m.enter(snap, StateRequested, &effects)
	if err := m.settle(snap, &effects); err != nil {
		return nil, nil, err
	}
	snap.LastTransitionAt = m.clock()
	return snap, effects, nil
}

// Apply validates and applies one event, mutating the snapshot in place and
// returning the entry effects to dispatch. On error the snapshot must be
// discarded: a failed transition is never partially applied by the caller.
func (m *Machine) Apply(snap *domain.Snapshot, event domain.Event, payload domain.Payload) ([]domain.EffectRequest, error) {
	def, ok := m.states[snap.Value.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidTransition, snap.Value.Name)
	}

	var effects []domain.EffectRequest

	if def.parallel != nil && isServiceEvent(event) {
		if err := applyServiceEvent(def.parallel, snap, event, payload); err != nil {
			return nil, err
		}
		if err := m.settle(snap, &effects); err != nil {
			return nil, err
		}
		snap.LastTransitionAt = m.clock()
		return effects, nil
	}

	defs, ok := def.events[event]
	if !ok {
		return nil, fmt.Errorf("%w: event %q not accepted in state %q",
			domain.ErrInvalidTransition, event, snap.Value.Name)
	}

	in := m.guardInput(snap)
	for _, t := range defs {
		if t.guard != nil && !t.guard(in) {
			continue
		}
		if event == domain.EventDecline && payload.Reason != "" {
			snap.Context.DeclineReason = payload.Reason
		}
		m.enter(snap, t.target, &effects)
		if err := m.settle(snap, &effects); err != nil {
			return nil, err
		}
		snap.LastTransitionAt = m.clock()
		return effects, nil
	}
	return nil, fmt.Errorf("%w: no guard satisfied for event %q in state %q",
		domain.ErrInvalidTransition, event, snap.Value.Name)
}

// AvailableEvents lists the events currently accepted, with service-scoped
// events expanded per service ("approveService:catering"). Guarded events are
// included only when some guard would pass right now.
func (m *Machine) AvailableEvents(snap *domain.Snapshot) []string {
	def, ok := m.states[snap.Value.Name]
	if !ok {
		return nil
	}
	var out []string
	in := m.guardInput(snap)

	if def.parallel != nil {
		for _, s := range domain.Services() {
			sub, ok := snap.Value.Region(string(s))
			if !ok {
				continue
			}
			switch {
			case def.parallel.phase == phaseApproval && sub.Name == subPending:
				out = append(out,
					string(domain.EventApproveService)+":"+string(s),
					string(domain.EventDeclineService)+":"+string(s))
			case def.parallel.phase == phaseCloseout && sub.Name == subPendingCloseout:
				out = append(out, string(domain.EventCloseoutService)+":"+string(s))
			}
		}
	}

	for event, defs := range def.events {
		for _, t := range defs {
			if t.guard == nil || t.guard(in) {
				out = append(out, string(event))
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *Machine) guardInput(snap *domain.Snapshot) guardInput {
	return guardInput{c: snap.Context, last: snap.LastTransitionAt, now: m.clock()}
}

// enter moves the snapshot into a state, initializing parallel regions and
// collecting the state's entry effects. Effects are requests for the caller
// to dispatch after persistence; they never run inline.
func (m *Machine) enter(snap *domain.Snapshot, target string, effects *[]domain.EffectRequest) {
	def := m.states[target]
	if def.parallel != nil {
		snap.Value = enterRegions(target, def.parallel.phase, snap.Context)
	} else {
		snap.Value = domain.Simple(target)
	}
	for _, e := range def.entry {
		*effects = append(*effects, domain.EffectRequest{
			Effect:        e,
			Tenant:        snap.Context.Tenant,
			ReservationID: snap.Context.ReservationID,
			State:         target,
		})
	}
}

// maxSettleSteps caps the settle loop. The profile tables have no guard
// cycles; hitting the cap indicates a table bug, not a data condition.
const maxSettleSteps = 16

// settle runs guarded always-transitions and parallel onDone completions to a
// fixed point. One event is fully processed before the machine yields.
func (m *Machine) settle(snap *domain.Snapshot, effects *[]domain.EffectRequest) error {
	for step := 0; step < maxSettleSteps; step++ {
		def, ok := m.states[snap.Value.Name]
		if !ok {
			return fmt.Errorf("machine entered unknown state %q", snap.Value.Name)
		}

		if def.parallel != nil {
			if !regionsComplete(def.parallel.phase, snap.Value) {
				return nil
			}
			m.enter(snap, def.parallel.onDone, effects)
			continue
		}

		in := m.guardInput(snap)
		moved := false
		for _, t := range def.always {
			if t.guard == nil || t.guard(in) {
				m.enter(snap, t.target, effects)
				moved = true
				break
			}
		}
		if !moved {
			return nil
		}
	}
	return fmt.Errorf("machine did not settle after %d steps in state %q", maxSettleSteps, snap.Value.Name)
}
