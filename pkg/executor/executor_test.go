package executor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/roomflow/pkg/adapters/memory"
	"github.com/aretw0/roomflow/pkg/approval"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/executor"
	"github.com/aretw0/roomflow/pkg/machine"
	"github.com/aretw0/roomflow/pkg/persistence"
)

type recordingObserver struct {
	mu       sync.Mutex
	applied  []string
	rejected []string
	autoRej  []string
}

func (o *recordingObserver) TransitionApplied(tenant, event, from, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, event+"->"+to)
}

func (o *recordingObserver) TransitionRejected(tenant, event, state string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, event+"@"+state)
}

func (o *recordingObserver) AutoApprovalRejected(tenant, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.autoRej = append(o.autoRej, reason)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	seen []domain.EffectRequest
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, req domain.EffectRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, req)
	return d.err
}

type fixture struct {
	exec  *executor.Executor
	store *memory.Store
	obs   *recordingObserver
	disp  *recordingDispatcher
	clock *time.Time
}

func newFixture(t *testing.T, opts ...executor.Option) *fixture {
	t.Helper()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := &fixture{
		store: memory.NewStore(),
		obs:   &recordingObserver{},
		disp:  &recordingDispatcher{},
		clock: &now,
	}
	tick := func() time.Time { return *f.clock }
	machines := map[machine.ProfileKind]*machine.Machine{
		machine.ProfileBasic: machine.New(machine.ProfileBasic, approval.StaticLimits{}, machine.WithClock(tick)),
		machine.ProfileFull:  machine.New(machine.ProfileFull, approval.StaticLimits{}, machine.WithClock(tick)),
	}
	profileFor := func(tenant string) machine.ProfileKind {
		if tenant == "basic-co" {
			return machine.ProfileBasic
		}
		return machine.ProfileFull
	}
	opts = append([]executor.Option{
		executor.WithObserver(f.obs),
		executor.WithDispatcher(f.disp),
		executor.WithRehydrator(persistence.NewRehydrator(persistence.WithClock(tick))),
	}, opts...)
	f.exec = executor.New(f.store, machines, profileFor, opts...)
	return f
}

func autoApprovable(id string) domain.Context {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	return domain.Context{
		Tenant:        "acme",
		ReservationID: id,
		RequesterRole: domain.RoleStudent,
		BookingKind:   domain.KindStandard,
		TimeWindow:    domain.TimeWindow{Start: start, End: start.Add(2 * time.Hour)},
		SelectedResources: []domain.Resource{
			{ID: "room-1", AutoApprove: true},
		},
	}
}

func manualContext(id string) domain.Context {
	c := autoApprovable(id)
	c.SelectedResources[0].AutoApprove = false
	return c
}

func TestCreate_PersistsAndDispatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.exec.Create(ctx, autoApprovable("res-1"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, machine.StateApproved, result.NewState)

	record, err := f.store.Get(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, machine.StateApproved, record[persistence.FieldState])
	assert.Equal(t, machine.VariantFull, record[persistence.FieldVariant])

	// Effects dispatch once the snapshot write has landed.
	require.NotEmpty(t, f.disp.seen)
	assert.Equal(t, "res-1", f.disp.seen[0].ReservationID)
	assert.Empty(t, f.obs.autoRej)
	assert.Equal(t, []string{"create->Approved"}, f.obs.applied)
}

func TestCreate_ManualPath_ReportsRejectionReason(t *testing.T) {
	f := newFixture(t)

	result, err := f.exec.Create(context.Background(), manualContext("res-2"))
	require.NoError(t, err)
	assert.Equal(t, machine.StateRequested, result.NewState)
	require.Len(t, f.obs.autoRej, 1)
	assert.NotEmpty(t, f.obs.autoRej[0])
}

func TestCreate_UnknownProfile(t *testing.T) {
	f := newFixture(t)
	machines := map[machine.ProfileKind]*machine.Machine{}
	exec := executor.New(f.store, machines, nil)

	_, err := exec.Create(context.Background(), manualContext("res-3"))
	assert.Error(t, err)
}

func TestExecute_AppliesAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.exec.Create(ctx, manualContext("res-4"))
	require.NoError(t, err)

	result, err := f.exec.Execute(ctx, "res-4", domain.EventApprove, domain.Payload{})
	require.NoError(t, err)
	assert.Equal(t, machine.StatePreApproved, result.NewState)

	record, err := f.store.Get(ctx, "res-4")
	require.NoError(t, err)
	assert.Equal(t, machine.StatePreApproved, record[persistence.FieldState])
}

func TestExecute_InvalidTransition_LeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.exec.Create(ctx, manualContext("res-5"))
	require.NoError(t, err)

	_, err = f.exec.Execute(ctx, "res-5", domain.EventCheckOut, domain.Payload{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	record, err := f.store.Get(ctx, "res-5")
	require.NoError(t, err)
	assert.Equal(t, machine.StateRequested, record[persistence.FieldState])
	assert.Equal(t, []string{"checkOut@Requested"}, f.obs.rejected)
}

func TestExecute_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec.Execute(context.Background(), "nope", domain.EventApprove, domain.Payload{})
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestExecute_DispatchFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.disp.err = errors.New("notifier down")

	result, err := f.exec.Create(context.Background(), autoApprovable("res-6"))
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecute_LegacyRecordMigratesOnTheFly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, "legacy-1", map[string]any{
		"tenant": "acme",
		"status": "APPROVED",
	}))

	result, err := f.exec.Execute(ctx, "legacy-1", domain.EventCheckIn, domain.Payload{})
	require.NoError(t, err)
	assert.Equal(t, machine.StateCheckedIn, result.NewState)

	// The migrated snapshot is now persisted; the raw status stays behind
	// but no longer drives rehydration.
	record, err := f.store.Get(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, machine.StateCheckedIn, record[persistence.FieldState])
	assert.Equal(t, "APPROVED", record["status"])
}

func TestAvailableTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.exec.Create(ctx, manualContext("res-7"))
	require.NoError(t, err)

	events, err := f.exec.AvailableTransitions(ctx, "res-7")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"approve", "decline", "cancel", "edit"}, events)
}

func TestMigrate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.exec.Migrate(ctx, "acme", "legacy-2", "CANCELED")
	require.NoError(t, err)
	assert.Equal(t, machine.StateCanceled, result.NewState)

	record, err := f.store.Get(ctx, "legacy-2")
	require.NoError(t, err)
	assert.Equal(t, machine.StateCanceled, record[persistence.FieldState])

	_, err = f.exec.Migrate(ctx, "acme", "legacy-3", "BOGUS")
	assert.ErrorIs(t, err, domain.ErrRehydration)
}

func TestExecute_SerializesPerReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.exec.Create(ctx, autoApprovable("res-8"))
	require.NoError(t, err)

	// Concurrent self-transitions must all succeed: each one sees a fully
	// persisted snapshot, never a half-written record.
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.exec.Execute(ctx, "res-8", domain.EventModify, domain.Payload{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	record, err := f.store.Get(ctx, "res-8")
	require.NoError(t, err)
	assert.Equal(t, machine.StateApproved, record[persistence.FieldState])
}

func TestExecute_WithDistributedLocker(t *testing.T) {
	f := newFixture(t, executor.WithDistributedLocker(memory.NewLocker()))
	ctx := context.Background()

	_, err := f.exec.Create(ctx, autoApprovable("res-9"))
	require.NoError(t, err)
	result, err := f.exec.Execute(ctx, "res-9", domain.EventCheckIn, domain.Payload{})
	require.NoError(t, err)
	assert.Equal(t, machine.StateCheckedIn, result.NewState)
}

func TestSweepDeclined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// One declined booking past the timeout, one fresh decline, one approved
	// booking, and one unreadable record.
	_, err := f.exec.Create(ctx, manualContext("sweep-old"))
	require.NoError(t, err)
	_, err = f.exec.Execute(ctx, "sweep-old", domain.EventDecline, domain.Payload{})
	require.NoError(t, err)

	*f.clock = f.clock.Add(machine.DeclinedTimeout)

	_, err = f.exec.Create(ctx, manualContext("sweep-fresh"))
	require.NoError(t, err)
	_, err = f.exec.Execute(ctx, "sweep-fresh", domain.EventDecline, domain.Payload{})
	require.NoError(t, err)

	_, err = f.exec.Create(ctx, autoApprovable("sweep-approved"))
	require.NoError(t, err)

	require.NoError(t, f.store.Put(ctx, "sweep-junk", map[string]any{"note": "no machine fields"}))

	moved, err := f.exec.SweepDeclined(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	record, err := f.store.Get(ctx, "sweep-old")
	require.NoError(t, err)
	assert.Equal(t, machine.StateClosed, record[persistence.FieldState],
		"a timed-out decline with no services settles through Canceled to Closed")

	record, err = f.store.Get(ctx, "sweep-fresh")
	require.NoError(t, err)
	assert.Equal(t, machine.StateDeclined, record[persistence.FieldState],
		"the fresh decline has not reached the timeout")
}

func TestSweepDeclined_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := f.exec.Create(ctx, manualContext("sweep-ctx"))
	require.NoError(t, err)

	cancel()
	_, err = f.exec.SweepDeclined(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
