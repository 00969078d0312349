package executor

import (
	"context"
	"errors"

	"github.com/aretw0/roomflow/pkg/domain"
)

// SweepDeclined fires the declineTimeout event for every stored reservation.
// The event's guard only passes for bookings still sitting in Declined past
// the timeout, so sweeping is safe to run broadly and repeatedly; everything
// else reports an invalid transition and is skipped. Returns the number of
// bookings moved.
func (e *Executor) SweepDeclined(ctx context.Context) (int, error) {
	ids, err := e.store.List(ctx)
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return moved, ctx.Err()
		}
		result, err := e.Execute(ctx, id, domain.EventDeclineTimeout, domain.Payload{})
		switch {
		case err == nil:
			moved++
			e.logger.Info("declined booking timed out",
				"reservation", id, "state", result.NewState)
		case errors.Is(err, domain.ErrInvalidTransition):
			// Not in Declined, or timer not yet elapsed.
		case errors.Is(err, domain.ErrRehydration):
			e.logger.Warn("skipping unreadable reservation during sweep",
				"reservation", id, "err", err)
		default:
			return moved, err
		}
	}
	return moved, nil
}
