package machine

import "github.com/aretw0/roomflow/pkg/domain"

// The profile tables below are the single source of truth for both tenant
// classes. Entry effects are delegated notifications; they are not part of
// the guard-evaluation contract.

func (m *Machine) gAutoApprove(in guardInput) bool {
	return m.Evaluate(in.c).Eligible
}

// fullProfile wires the richer tenant class: pre-approval, the parallel
// services-request region, and the service-closeout region.
func fullProfile(m *Machine) map[string]stateDef {
	return map[string]stateDef{
		StateRequested: {
			entry: []domain.Effect{domain.EffectCreateExternalEvent, domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventApprove: {{target: StatePreApproved}},
				domain.EventDecline: {{target: StateDeclined}},
				domain.EventCancel:  {{target: StateCanceled}},
				domain.EventEdit:    {{target: StateRequested}},
			},
			always: []transitionDef{
				{target: StateApproved, guard: m.gAutoApprove},
				{target: StateServicesRequest, guard: gVIPWithServices},
			},
		},
		StatePreApproved: {
			entry: []domain.Effect{domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventApprove: {
					{target: StateApproved, guard: gAllRequestedApproved},
					{target: StateServicesRequest, guard: gHasRequestedService},
					{target: StateApproved},
				},
				domain.EventCancel:  {{target: StateCanceled}},
				domain.EventDecline: {{target: StateDeclined}},
				domain.EventEdit:    {{target: StateRequested}},
			},
		},
		StateServicesRequest: {
			parallel: &parallelDef{phase: phaseApproval, onDone: StateEvaluateServices},
			events: map[domain.Event][]transitionDef{
				// Cancel abandons the region; undecided services head to
				// closeout vacuously.
				domain.EventCancel: {{target: StateCanceled}},
			},
		},
		StateEvaluateServices: {
			always: []transitionDef{
				{target: StateApproved, guard: gAllRequestedApproved},
				{target: StateDeclined, guard: gAnyRequestedDeclined},
			},
		},
		StateApproved: {
			entry: []domain.Effect{domain.EffectNotify, domain.EffectInviteAttendee},
			events: map[domain.Event][]transitionDef{
				domain.EventCheckIn:         {{target: StateCheckedIn}},
				domain.EventCancel:          {{target: StateCanceled}},
				domain.EventDecline:         {{target: StateDeclined}},
				domain.EventNoShow:          {{target: StateNoShow}},
				domain.EventAutoCloseScript: {{target: StateClosed}},
				domain.EventModify:          {{target: StateApproved}},
			},
		},
		StateDeclined: {
			entry: []domain.Effect{domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventCancel: {{target: StateCanceled}},
				domain.EventEdit:   {{target: StateRequested}},
				domain.EventDeclineTimeout: {
					{target: StateServiceCloseout, guard: and(gDeclineTimerElapsed, gHasRequestedService)},
					{target: StateCanceled, guard: gDeclineTimerElapsed},
				},
			},
		},
		StateCanceled: {
			entry: []domain.Effect{domain.EffectCancelProcessing},
			always: []transitionDef{
				{target: StateServiceCloseout, guard: gHasRequestedService},
				{target: StateClosed},
			},
		},
		StateCheckedIn: {
			entry: []domain.Effect{domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventCheckOut: {{target: StateCheckedOut}},
			},
		},
		StateNoShow: {
			always: []transitionDef{{target: StateCanceled}},
		},
		StateCheckedOut: {
			entry: []domain.Effect{domain.EffectCheckoutProcessing},
			always: []transitionDef{
				{target: StateServiceCloseout, guard: gHasRequestedService},
				{target: StateClosed},
			},
		},
		StateServiceCloseout: {
			parallel: &parallelDef{phase: phaseCloseout, onDone: StateClosed},
		},
		StateClosed: {
			entry: []domain.Effect{domain.EffectCloseProcessing},
		},
	}
}

// basicProfile wires the simpler tenant class: no pre-approval step and no
// service regions. Requested auto-approves or waits for a manual decision,
// and the post-approval shape matches the full profile without service
// branching.
func basicProfile(m *Machine) map[string]stateDef {
	return map[string]stateDef{
		StateRequested: {
			entry: []domain.Effect{domain.EffectCreateExternalEvent, domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventApprove: {{target: StateApproved}},
				domain.EventDecline: {{target: StateDeclined}},
				domain.EventCancel:  {{target: StateCanceled}},
				domain.EventEdit:    {{target: StateRequested}},
			},
			always: []transitionDef{
				{target: StateApproved, guard: m.gAutoApprove},
			},
		},
		StateApproved: {
			entry: []domain.Effect{domain.EffectNotify, domain.EffectInviteAttendee},
			events: map[domain.Event][]transitionDef{
				domain.EventCheckIn:         {{target: StateCheckedIn}},
				domain.EventCancel:          {{target: StateCanceled}},
				domain.EventDecline:         {{target: StateDeclined}},
				domain.EventNoShow:          {{target: StateNoShow}},
				domain.EventAutoCloseScript: {{target: StateClosed}},
				domain.EventModify:          {{target: StateApproved}},
			},
		},
		StateDeclined: {
			entry: []domain.Effect{domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventCancel:         {{target: StateCanceled}},
				domain.EventEdit:           {{target: StateRequested}},
				domain.EventDeclineTimeout: {{target: StateCanceled, guard: gDeclineTimerElapsed}},
			},
		},
		StateCanceled: {
			entry:  []domain.Effect{domain.EffectCancelProcessing},
			always: []transitionDef{{target: StateClosed}},
		},
		StateCheckedIn: {
			entry: []domain.Effect{domain.EffectNotify},
			events: map[domain.Event][]transitionDef{
				domain.EventCheckOut: {{target: StateCheckedOut}},
			},
		},
		StateNoShow: {
			always: []transitionDef{{target: StateCanceled}},
		},
		StateCheckedOut: {
			entry:  []domain.Effect{domain.EffectCheckoutProcessing},
			always: []transitionDef{{target: StateClosed}},
		},
		StateClosed: {
			entry: []domain.Effect{domain.EffectCloseProcessing},
		},
	}
}

func and(guards ...guardFn) guardFn {
	return func(in guardInput) bool {
		for _, g := range guards {
			if !g(in) {
				return false
			}
		}
		return true
	}
}
