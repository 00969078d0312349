/*
Package roomflow implements the booking lifecycle core of a multi-tenant room
reservation platform: a deterministic state machine per tenant profile, an
auto-approval evaluator, six parallel ancillary-service sub-workflows, and
snapshot persistence with migration for bookings that predate the machine.

It follows a hexagonal layout. The machine and evaluator are pure; everything
stateful enters through ports (document store, distributed lock, effect
dispatcher, telemetry observer) with in-memory and Redis adapters provided.
The executor serializes transitions per reservation id and owns the
persist-then-dispatch ordering, so a side-effect failure can never roll back
or corrupt a persisted transition.

# Usage

The root Engine wraps the executor for embedding:

	engine := roomflow.New(
		roomflow.WithProfileFor(func(tenant string) machine.ProfileKind {
			return machine.ProfileFull
		}),
	)

	result, err := engine.Create(ctx, domain.Context{
		Tenant:        "acme",
		ReservationID: "res-1",
		RequesterRole: domain.RoleStudent,
		BookingKind:   domain.KindStandard,
		// ...
	})

	result, err = engine.Transition(ctx, "res-1", domain.EventCheckIn, domain.Payload{})

Hosts that serve HTTP mount the chi handler from pkg/adapters/http over
Engine.Executor(); the roomflowd command in cmd/roomflowd is that wiring as a
standalone daemon.
*/
package roomflow
