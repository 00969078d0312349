// Package memory provides in-process adapters for tests and single-node
// deployments.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/ports"
)

// Store implements ports.DocumentStore in memory. Safe for concurrent use.
type Store struct {
	data map[string]map[string]any
	mu   sync.RWMutex
}

// NewStore creates an empty in-memory document store.
func NewStore() *Store {
	return &Store{data: make(map[string]map[string]any)}
}

// Get returns a deep copy of the record so callers cannot mutate stored
// state through shared references.
func (s *Store) Get(ctx context.Context, reservationID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[reservationID]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return deepCopy(record)
}

// Put merges fields into the record, creating it if absent.
func (s *Store) Put(ctx context.Context, reservationID string, fields map[string]any) error {
	copied, err := deepCopy(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.data[reservationID]
	if !ok {
		record = make(map[string]any, len(copied))
		s.data[reservationID] = record
	}
	for k, v := range copied {
		record[k] = v
	}
	return nil
}

// List returns all stored reservation ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// deepCopy isolates nested maps the same way JSON persistence would,
// which also keeps the in-memory adapter's type behavior aligned with the
// redis adapter (numbers come back as float64, times as strings).
func deepCopy(record map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Locker implements ports.DistributedLocker with process-local mutexes, for
// single-node deployments where the wiring expects a locker.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a key. The TTL is ignored; in-process locks
// cannot be orphaned.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func(ctx context.Context) error {
		m.Unlock()
		return nil
	}, nil
}
