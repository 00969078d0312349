package domain

import "time"

// Event names a lifecycle trigger. Service-scoped events carry the target
// service in the event payload.
type Event string

const (
	EventApprove         Event = "approve"
	EventDecline         Event = "decline"
	EventCancel          Event = "cancel"
	EventEdit            Event = "edit"
	EventCheckIn         Event = "checkIn"
	EventCheckOut        Event = "checkOut"
	EventNoShow          Event = "noShow"
	EventAutoCloseScript Event = "autoCloseScript"
	EventModify          Event = "modify"
	EventApproveService  Event = "approveService"
	EventDeclineService  Event = "declineService"
	EventCloseoutService Event = "closeoutService"
	EventDeclineTimeout  Event = "declineTimeout"
)

// Payload carries optional event arguments.
type Payload struct {
	Service Service `json:"service,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// Effect names a fire-and-forget side effect dispatched on state entry.
// Effects are notifications to external collaborators; they never gate or
// fail a transition.
type Effect string

const (
	EffectCreateExternalEvent Effect = "create-external-event"
	EffectNotify              Effect = "notify"
	EffectInviteAttendee      Effect = "invite-attendee"
	EffectCancelProcessing    Effect = "cancel-processing"
	EffectCheckoutProcessing  Effect = "checkout-processing"
	EffectCloseProcessing     Effect = "close-processing"
)

// EffectRequest is one pending side effect emitted by a transition.
type EffectRequest struct {
	Effect        Effect
	Tenant        string
	ReservationID string
	State         string
}

// Snapshot is the persisted representation of a machine instance. It is
// created on the first tracked transition, overwritten on every successful
// one, and never deleted.
type Snapshot struct {
	Value            Value
	Context          Context
	MachineVariant   string
	LastTransitionAt time.Time
}
