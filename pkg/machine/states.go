// Package machine implements the booking lifecycle state machine: two tenant
// behavior profiles sharing one parameterized core, with the six ancillary
// services modeled as parallel sub-workflows.
package machine

import "time"

// Lifecycle state names. These are the values persisted in the snapshot, so
// they are stable identifiers, not display strings.
const (
	StateRequested        = "Requested"
	StatePreApproved      = "Pre-approved"
	StateServicesRequest  = "Services-Request"
	StateEvaluateServices = "Evaluate-Services-Request"
	StateApproved         = "Approved"
	StateDeclined         = "Declined"
	StateCanceled         = "Canceled"
	StateCheckedIn        = "Checked-In"
	StateNoShow           = "No-Show"
	StateCheckedOut       = "Checked-Out"
	StateServiceCloseout  = "Service-Closeout"
	StateClosed           = "Closed"
)

// Service region sub-states.
const (
	subPending         = "Pending"
	subApproved        = "Approved"
	subDeclined        = "Declined"
	subPendingCloseout = "Pending-Closeout"
	subClosedOut       = "Closed-Out"
)

// DeclinedTimeout is how long a booking may sit in Declined with no
// interaction before the declineTimeout event becomes valid. The timer is
// bound to the specific Declined activation: LastTransitionAt is rewritten on
// every transition, so re-entering Declined restarts it.
const DeclinedTimeout = 24 * time.Hour
