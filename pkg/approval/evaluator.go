// Package approval implements the auto-approval evaluator: a pure function
// deciding whether a reservation qualifies for automatic approval from
// role, resource, duration, and ancillary-service inputs.
package approval

import (
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/ports"
)

// Capabilities describes what the tenant's behavior profile permits.
type Capabilities struct {
	// AutoApprove enables the evaluator at all for this tenant class.
	AutoApprove bool
	// VIP marks the tenant class as VIP-capable, enabling the
	// VIP-with-services deferral rule.
	VIP bool
}

// Rejection reasons, in precedence order. The first failing check wins.
const (
	ReasonLegacyMigration  = "migrated legacy booking requires manual review"
	ReasonTenantPolicy     = "tenant policy defers to manual services review"
	ReasonDurationExceeded = "duration outside allowed hour limits"
	ReasonResourceFlag     = "selected resource not eligible for auto-approval"
	ReasonPairRule         = "selected resources cannot auto-book as a pair"
	ReasonServiceRequested = "requested services require manual approval"
)

// Decision is the evaluator outcome. Reason is set only when not eligible.
type Decision struct {
	Eligible bool
	Reason   string
}

func reject(reason string) Decision {
	return Decision{Eligible: false, Reason: reason}
}

// Evaluate computes auto-approval eligibility. It is total: every well-formed
// context yields a Decision, and malformed inputs (nil maps, missing limits)
// evaluate conservatively rather than erroring.
func Evaluate(c domain.Context, caps Capabilities, limits ports.LimitResolver) Decision {
	// 1. Legacy bookings never auto-approve, regardless of profile.
	if c.MigratedFromLegacy {
		return reject(ReasonLegacyMigration)
	}

	// 2. Tenant policy: no auto-approval at all, or VIP bookings with any
	// requested service defer to the manual services-request flow.
	if !caps.AutoApprove {
		return reject(ReasonTenantPolicy)
	}
	if caps.VIP && c.BookingKind == domain.KindVIP && anyServiceRequested(c) {
		return reject(ReasonTenantPolicy)
	}

	// 3. Duration bounds. The maximum is inclusive; walk-ins additionally
	// enforce the resolved minimum.
	resolved := resolve(c, limits)
	hours := c.TimeWindow.Hours()
	if resolved.MaxHours > 0 && hours > resolved.MaxHours {
		return reject(ReasonDurationExceeded)
	}
	if c.BookingKind == domain.KindWalkIn && resolved.MinHours > 0 && hours < resolved.MinHours {
		return reject(ReasonDurationExceeded)
	}

	// 4. Every resource must carry the auto-approval flag, except for
	// walk-ins which bypass the flag check.
	if c.BookingKind != domain.KindWalkIn {
		for _, r := range c.SelectedResources {
			if !r.AutoApprove {
				return reject(ReasonResourceFlag)
			}
		}
	}

	// 5. Arity: a pair must be flagged pair-bookable; three or more never
	// auto-approve. Zero or one resource passes.
	switch {
	case len(c.SelectedResources) == 2:
		if !c.SelectedResources[0].PairAutoApprove || !c.SelectedResources[1].PairAutoApprove {
			return reject(ReasonPairRule)
		}
	case len(c.SelectedResources) > 2:
		return reject(ReasonPairRule)
	}

	// 6. Services that always need a human: setup, catering, security, and
	// equipment/media for anything that is not a walk-in.
	if c.Requested(domain.ServiceSetup) ||
		c.Requested(domain.ServiceCatering) ||
		c.Requested(domain.ServiceSecurity) ||
		(c.BookingKind != domain.KindWalkIn && c.Requested(domain.ServiceEquipment)) {
		return reject(ReasonServiceRequested)
	}

	return Decision{Eligible: true}
}

func anyServiceRequested(c domain.Context) bool {
	for _, s := range domain.Services() {
		if c.Requested(s) {
			return true
		}
	}
	return false
}

func resolve(c domain.Context, limits ports.LimitResolver) domain.HourLimits {
	if limits == nil {
		return domain.HourLimits{}
	}
	return limits.Resolve(c.RequesterRole, c.BookingKind, c.SelectedResources)
}
