package persistence

import (
	"fmt"

	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/machine"
)

// legacyStates maps the flat pre-machine status field to a lifecycle state.
var legacyStates = map[string]string{
	"REQUESTED":    machine.StateRequested,
	"PRE_APPROVED": machine.StatePreApproved,
	"APPROVED":     machine.StateApproved,
	"DECLINED":     machine.StateDeclined,
	"CANCELED":     machine.StateCanceled,
	"CHECKED-IN":   machine.StateCheckedIn,
	"CHECKED-OUT":  machine.StateCheckedOut,
	"NO_SHOW":      machine.StateNoShow,
	"CLOSED":       machine.StateClosed,
}

// MigrateFromStatus synthesizes a snapshot for a booking that predates the
// machine. This is the one declared constructor of a state value that does
// not go through a transition: it places the machine at the mapped state
// without running entry effects or auto-transition settling, so a legacy
// CANCELED booking lands on Canceled instead of being swept onward to Closed.
// The resulting context is always marked as migrated, which the auto-approval
// evaluator treats as never eligible.
func (r *Rehydrator) MigrateFromStatus(m *machine.Machine, tenant, reservationID, legacyStatus string) (*domain.Snapshot, error) {
	target, ok := legacyStates[legacyStatus]
	if !ok {
		return nil, fmt.Errorf("%w: unknown legacy status %q for reservation %q",
			domain.ErrRehydration, legacyStatus, reservationID)
	}
	if !m.HasState(target) {
		// The basic profile has no Pre-approved state; such bookings
		// re-enter the pipeline at Requested for a manual decision.
		r.logger.Warn("legacy status has no state in profile, mapping to Requested",
			"reservation", reservationID, "status", legacyStatus, "variant", m.Variant())
		target = machine.StateRequested
	}
	return &domain.Snapshot{
		Value: domain.Simple(target),
		Context: domain.Context{
			Tenant:             tenant,
			ReservationID:      reservationID,
			MigratedFromLegacy: true,
		},
		MachineVariant:   m.Variant(),
		LastTransitionAt: r.clock(),
	}, nil
}
