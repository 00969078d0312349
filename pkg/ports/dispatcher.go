package ports

import (
	"context"

	"github.com/aretw0/roomflow/pkg/domain"
)

// EffectDispatcher executes state-entry side effects (notifications, calendar
// sync, processing hooks). Dispatch is best-effort: the executor logs and
// swallows any returned error, and a dispatch failure never rolls back the
// transition that emitted it. Dispatchers must not mutate machine context;
// any effect-driven state change is submitted as a new event.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, req domain.EffectRequest) error
}

// NopDispatcher discards all effect requests.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(ctx context.Context, req domain.EffectRequest) error {
	return nil
}
