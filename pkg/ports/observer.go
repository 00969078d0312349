package ports

// Observer receives post-transition telemetry. The machine never consults it
// for guard logic; it is called by the executor after the outcome is decided,
// keeping the core pure and testable.
type Observer interface {
	TransitionApplied(tenant, event, from, to string)
	TransitionRejected(tenant, event, state string)
	AutoApprovalRejected(tenant, reason string)
}

// NopObserver ignores all telemetry.
type NopObserver struct{}

func (NopObserver) TransitionApplied(tenant, event, from, to string) {}
func (NopObserver) TransitionRejected(tenant, event, state string)   {}
func (NopObserver) AutoApprovalRejected(tenant, reason string)       {}
