package ports

import (
	"context"
)

// DocumentStore is the key-value view of the booking document store, keyed by
// reservation id. The machine core persists only its snapshot fields into the
// record; the rest of the booking document belongs to the surrounding system.
type DocumentStore interface {
	// Get retrieves the full record for a reservation.
	// Returns domain.ErrReservationNotFound if no record exists.
	Get(ctx context.Context, reservationID string) (map[string]any, error)

	// Put merges the given fields into the record, creating it if absent.
	// Fields not mentioned are left untouched.
	Put(ctx context.Context, reservationID string, fields map[string]any) error

	// List returns the ids of all stored reservations. Used by the
	// declined-timeout sweeper.
	List(ctx context.Context) ([]string, error)
}
