package ports

import "github.com/aretw0/roomflow/pkg/domain"

// LimitResolver resolves the effective hour limits for a role/kind/resource
// combination. Implementations are pure; the evaluator treats the resolved
// maximum as inclusive ("exactly at the limit" is still eligible).
type LimitResolver interface {
	Resolve(role domain.Role, kind domain.BookingKind, resources []domain.Resource) domain.HourLimits
}
