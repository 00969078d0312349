package roomflow_test

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/roomflow"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/machine"
)

// ExampleEngine walks a booking through its whole life: an eligible request
// auto-approves on creation, then check-in and check-out carry it to Closed.
func ExampleEngine() {
	engine := roomflow.New(
		roomflow.WithProfileFor(func(tenant string) machine.ProfileKind {
			return machine.ProfileFull
		}),
	)

	ctx := context.Background()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	result, err := engine.Create(ctx, domain.Context{
		Tenant:        "acme",
		ReservationID: "res-1",
		RequesterRole: domain.RoleStudent,
		BookingKind:   domain.KindStandard,
		TimeWindow:    domain.TimeWindow{Start: start, End: start.Add(2 * time.Hour)},
		SelectedResources: []domain.Resource{
			{ID: "room-101", AutoApprove: true},
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(result.NewState)

	for _, event := range []domain.Event{domain.EventCheckIn, domain.EventCheckOut} {
		result, err = engine.Transition(ctx, "res-1", event, domain.Payload{})
		if err != nil {
			panic(err)
		}
		fmt.Println(result.NewState)
	}

	// Output:
	// Approved
	// Checked-In
	// Closed
}

// ExampleEngine_services shows the parallel service region: a VIP booking
// with catering waits for every requested service to be decided.
func ExampleEngine_services() {
	engine := roomflow.New(
		roomflow.WithProfileFor(func(tenant string) machine.ProfileKind {
			return machine.ProfileFull
		}),
	)

	ctx := context.Background()
	start := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	_, err := engine.Create(ctx, domain.Context{
		Tenant:            "acme",
		ReservationID:     "res-2",
		RequesterRole:     domain.RoleFaculty,
		BookingKind:       domain.KindVIP,
		TimeWindow:        domain.TimeWindow{Start: start, End: start.Add(time.Hour)},
		SelectedResources: []domain.Resource{{ID: "hall-1", AutoApprove: true}},
		RequestedServices: map[domain.Service]bool{domain.ServiceCatering: true},
	})
	if err != nil {
		panic(err)
	}

	events, err := engine.AvailableTransitions(ctx, "res-2")
	if err != nil {
		panic(err)
	}
	for _, e := range events {
		fmt.Println(e)
	}

	result, err := engine.Transition(ctx, "res-2", domain.EventApproveService,
		domain.Payload{Service: domain.ServiceCatering})
	if err != nil {
		panic(err)
	}
	fmt.Println(result.NewState)

	// Output:
	// approveService:catering
	// cancel
	// declineService:catering
	// Approved
}
