package machine

import "github.com/aretw0/roomflow/pkg/domain"

// allDecided is the canonical "every requested service has been decided"
// predicate. Both the decline aggregate and region-completion gating use it;
// there is deliberately no second variant anywhere in the codebase.
func allDecided(c domain.Context) bool {
	for _, s := range domain.Services() {
		if !c.Requested(s) {
			continue
		}
		if c.ApprovalOf(s) == domain.ApprovalUnset {
			return false
		}
	}
	return true
}

// AllRequestedApproved is true iff every requested service is approved.
// Vacuously true when nothing was requested.
func AllRequestedApproved(c domain.Context) bool {
	for _, s := range domain.Services() {
		if c.Requested(s) && c.ApprovalOf(s) != domain.ApprovalApproved {
			return false
		}
	}
	return true
}

// AnyRequestedDeclined is true iff every requested service has been decided
// and at least one is declined. It must never fire while a sibling decision
// is still pending; evaluating "declined" early is a correctness bug.
func AnyRequestedDeclined(c domain.Context) bool {
	if !allDecided(c) {
		return false
	}
	for _, s := range domain.Services() {
		if c.Requested(s) && c.ApprovalOf(s) == domain.ApprovalDeclined {
			return true
		}
	}
	return false
}

// HasAnyRequestedService is true iff at least one ancillary service was
// requested. It routes Cancel/Decline/Checkout toward Service-Closeout when
// services exist, or straight to Closed otherwise.
func HasAnyRequestedService(c domain.Context) bool {
	for _, s := range domain.Services() {
		if c.Requested(s) {
			return true
		}
	}
	return false
}

func gAllRequestedApproved(in guardInput) bool { return AllRequestedApproved(in.c) }
func gAnyRequestedDeclined(in guardInput) bool { return AnyRequestedDeclined(in.c) }
func gHasRequestedService(in guardInput) bool  { return HasAnyRequestedService(in.c) }
func gDeclineTimerElapsed(in guardInput) bool  { return in.now.Sub(in.last) >= DeclinedTimeout }
func gVIPWithServices(in guardInput) bool {
	return in.c.BookingKind == domain.KindVIP && HasAnyRequestedService(in.c)
}
