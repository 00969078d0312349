package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/roomflow/internal/logging"
	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/machine"
)

// Rehydrator turns stored records into live snapshots, migrating legacy
// bookings when no usable snapshot exists.
type Rehydrator struct {
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures a Rehydrator.
type Option func(*Rehydrator)

// WithLogger sets the logger used for rehydration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rehydrator) { r.logger = logger }
}

// WithClock overrides the time source used for synthesized snapshots.
func WithClock(clock func() time.Time) Option {
	return func(r *Rehydrator) { r.clock = clock }
}

// NewRehydrator creates a Rehydrator with a no-op logger by default.
func NewRehydrator(opts ...Option) *Rehydrator {
	r := &Rehydrator{
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rehydrate produces a live snapshot for the record. A snapshot whose variant
// matches the machine is decoded directly. A variant mismatch or corrupt
// snapshot is a warning, not a hard failure: it falls through to legacy
// migration when the record carries a raw status field. A record with
// neither is a rehydration failure.
func (r *Rehydrator) Rehydrate(record map[string]any, m *machine.Machine, reservationID string) (*domain.Snapshot, error) {
	if _, ok := record[FieldState]; ok {
		snap, err := DecodeSnapshot(record)
		switch {
		case err != nil:
			r.logger.Warn("snapshot corrupt, falling back to legacy migration",
				"reservation", reservationID, "err", err)
		case snap.MachineVariant != m.Variant():
			r.logger.Warn("machine variant mismatch, falling back to legacy migration",
				"reservation", reservationID,
				"stored", snap.MachineVariant, "expected", m.Variant())
		default:
			return snap, nil
		}
	}

	status, ok := record[FieldLegacyStatus].(string)
	if !ok || status == "" {
		return nil, fmt.Errorf("%w: reservation %q has no snapshot and no legacy status",
			domain.ErrRehydration, reservationID)
	}
	return r.MigrateFromStatus(m, TenantOf(record), reservationID, status)
}
