package machine

import (
	"fmt"

	"github.com/aretw0/roomflow/pkg/domain"
)

// phase selects which sub-workflow template a parallel region runs. The six
// per-service sub-machines are one template instantiated per service, never
// six hand-written copies.
type phase int

const (
	phaseApproval phase = iota
	phaseCloseout
)

// initial evaluates the template's entry pseudo-state for one service.
// Approval phase: an unrequested service finalizes immediately as Approved
// (vacuous truth). Closeout phase: a service without an approval finalizes
// immediately as Closed-Out (nothing to close out).
func (p phase) initial(c domain.Context, s domain.Service) domain.Value {
	switch p {
	case phaseApproval:
		if !c.Requested(s) {
			return domain.Simple(subApproved)
		}
		return domain.Simple(subPending)
	default:
		if c.ApprovalOf(s) != domain.ApprovalApproved {
			return domain.Simple(subClosedOut)
		}
		return domain.Simple(subPendingCloseout)
	}
}

// isFinal reports whether a region sub-state is terminal for the phase.
func (p phase) isFinal(name string) bool {
	switch p {
	case phaseApproval:
		return name == subApproved || name == subDeclined
	default:
		return name == subClosedOut
	}
}

// enterRegions builds the parallel state value for a region set, running the
// entry pseudo-state of every service sub-machine.
func enterRegions(state string, p phase, c domain.Context) domain.Value {
	regions := make(map[string]domain.Value, len(domain.Services()))
	for _, s := range domain.Services() {
		regions[string(s)] = p.initial(c, s)
	}
	return domain.Parallel(state, regions)
}

// regionsComplete reports whether every service sub-machine has reached a
// final sub-state. Completion triggers a single onDone transition in the
// parent.
func regionsComplete(p phase, v domain.Value) bool {
	for _, s := range domain.Services() {
		sub, ok := v.Region(string(s))
		if !ok || !p.isFinal(sub.Name) {
			return false
		}
	}
	return true
}

func isServiceEvent(e domain.Event) bool {
	switch e {
	case domain.EventApproveService, domain.EventDeclineService, domain.EventCloseoutService:
		return true
	}
	return false
}

// applyServiceEvent routes a per-service event to its region. The region
// must be in the pending sub-state for the event's phase; anything else is an
// invalid transition. The approvals/closeouts invariant holds by construction:
// only requested services ever enter Pending, and only approved services ever
// enter Pending-Closeout.
func applyServiceEvent(p *parallelDef, snap *domain.Snapshot, event domain.Event, payload domain.Payload) error {
	svc := payload.Service
	if svc == "" {
		return fmt.Errorf("%w: event %q requires a service payload", domain.ErrInvalidTransition, event)
	}
	sub, ok := snap.Value.Region(string(svc))
	if !ok {
		return fmt.Errorf("%w: no active region for service %q", domain.ErrInvalidTransition, svc)
	}

	switch {
	case p.phase == phaseApproval && event == domain.EventApproveService:
		if sub.Name != subPending {
			return regionStateError(event, svc, sub.Name)
		}
		snap.Context.SetApproval(svc, domain.ApprovalApproved)
		snap.Value = snap.Value.WithRegion(string(svc), domain.Simple(subApproved))
	case p.phase == phaseApproval && event == domain.EventDeclineService:
		if sub.Name != subPending {
			return regionStateError(event, svc, sub.Name)
		}
		snap.Context.SetApproval(svc, domain.ApprovalDeclined)
		if payload.Reason != "" {
			snap.Context.DeclineReason = payload.Reason
		}
		snap.Value = snap.Value.WithRegion(string(svc), domain.Simple(subDeclined))
	case p.phase == phaseCloseout && event == domain.EventCloseoutService:
		if sub.Name != subPendingCloseout {
			return regionStateError(event, svc, sub.Name)
		}
		snap.Context.SetCloseout(svc)
		snap.Value = snap.Value.WithRegion(string(svc), domain.Simple(subClosedOut))
	default:
		return fmt.Errorf("%w: event %q not accepted in region phase", domain.ErrInvalidTransition, event)
	}
	return nil
}

func regionStateError(event domain.Event, svc domain.Service, sub string) error {
	return fmt.Errorf("%w: event %q not accepted for service %q in sub-state %q",
		domain.ErrInvalidTransition, event, svc, sub)
}
