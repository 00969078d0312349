package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates per-reservation serialization across replicas.
// The executor already serializes transitions within one process; a locker
// extends "at most one in-flight transition per reservation id" to a fleet.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or the context is
	// canceled. The returned UnlockFunc MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
