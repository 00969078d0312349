package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/roomflow/pkg/domain"
)

// RunDocumentStoreContract verifies that a store adapter complies with the
// DocumentStore semantics: merge-on-put, not-found sentinel, and listing.
// Adapters call this from their own tests.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	t.Helper()
	ctx := context.Background()
	id := "contract-reservation-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		err := store.Put(ctx, id, map[string]any{
			"machineState":   "Requested",
			"machineVariant": "lifecycle/full",
		})
		require.NoError(t, err, "Put should not return error")

		record, err := store.Get(ctx, id)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "Requested", record["machineState"])
		assert.Equal(t, "lifecycle/full", record["machineVariant"])
	})

	t.Run("Put merges fields", func(t *testing.T) {
		err := store.Put(ctx, id, map[string]any{"machineState": "Approved"})
		require.NoError(t, err)

		record, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Approved", record["machineState"], "updated field should change")
		assert.Equal(t, "lifecycle/full", record["machineVariant"], "untouched field should survive")
	})

	t.Run("Get non-existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id)
	})
}
