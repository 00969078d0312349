// Package redis adapts the booking document store and the distributed lock
// onto Redis. Each reservation record is one JSON document; an index set
// supports listing for the declined-timeout sweeper.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/roomflow/pkg/domain"
)

const defaultPrefix = "roomflow:reservation:"

// Store implements ports.DocumentStore on Redis.
type Store struct {
	client *backend.Client
	prefix string
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) { s.prefix = prefix }
}

// NewFromClient creates a Store over an existing Redis client.
func NewFromClient(client *backend.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(reservationID string) string {
	return s.prefix + reservationID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Get loads and decodes the record document.
func (s *Store) Get(ctx context.Context, reservationID string) (map[string]any, error) {
	raw, err := s.client.Get(ctx, s.key(reservationID)).Result()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", reservationID, err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decode record %q: %w", reservationID, err)
	}
	return record, nil
}

// Put merges fields into the stored document. The read-merge-write is not
// atomic on its own; the executor's per-reservation lock guarantees a single
// writer per id.
func (s *Store) Put(ctx context.Context, reservationID string, fields map[string]any) error {
	record, err := s.Get(ctx, reservationID)
	if errors.Is(err, domain.ErrReservationNotFound) {
		record = make(map[string]any, len(fields))
	} else if err != nil {
		return err
	}
	for k, v := range fields {
		record[k] = v
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", reservationID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(reservationID), raw, 0)
	pipe.SAdd(ctx, s.indexKey(), reservationID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %q: %w", reservationID, err)
	}
	return nil
}

// List returns all indexed reservation ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	return ids, nil
}
