package domain

import "errors"

// ErrInvalidTransition is returned when the event is not accepted from the
// machine's current state. Callers should report it, not retry it.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrReservationNotFound is returned when a reservation id has no record in
// the document store.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrRehydration is returned when a stored record can neither be rehydrated
// from a snapshot nor migrated from a legacy status field.
var ErrRehydration = errors.New("cannot rehydrate machine state")
