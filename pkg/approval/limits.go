package approval

import "github.com/aretw0/roomflow/pkg/domain"

// StaticLimits resolves hour limits from the per-resource limit tables with a
// tenant-level fallback keyed by base role. It is the default LimitResolver,
// built from tenant configuration by the host.
type StaticLimits struct {
	// Fallback is the auto-approval limit table keyed by {student, faculty,
	// admin}, consulted for resources without an explicit entry.
	Fallback map[domain.Role]domain.HourLimits
}

// LimitKey builds the per-resource lookup key: the role name plus an optional
// booking-kind suffix ("WalkIn" or "VIP").
func LimitKey(role domain.Role, kind domain.BookingKind) string {
	switch kind {
	case domain.KindWalkIn:
		return string(role) + "WalkIn"
	case domain.KindVIP:
		return string(role) + "VIP"
	default:
		return string(role)
	}
}

// Resolve picks the most restrictive limits across the selected resources:
// the lowest maximum and the highest minimum. A resource with no entry for
// the role/kind key falls back to the tenant table; if that is absent too,
// the resource contributes unlimited max and zero min.
func (s StaticLimits) Resolve(role domain.Role, kind domain.BookingKind, resources []domain.Resource) domain.HourLimits {
	key := LimitKey(role, kind)
	out := domain.HourLimits{}
	apply := func(l domain.HourLimits) {
		if l.MaxHours > 0 && (out.MaxHours <= 0 || l.MaxHours < out.MaxHours) {
			out.MaxHours = l.MaxHours
		}
		if l.MinHours > out.MinHours {
			out.MinHours = l.MinHours
		}
	}

	if len(resources) == 0 {
		if fb, ok := s.Fallback[role]; ok {
			apply(fb)
		}
		return out
	}

	for _, r := range resources {
		if l, ok := r.Limits[key]; ok {
			apply(l)
			continue
		}
		if fb, ok := s.Fallback[role]; ok {
			apply(fb)
		}
		// Neither table has an entry: unlimited max, zero min.
	}
	return out
}
