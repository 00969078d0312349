// Package persistence owns the machine snapshot's stored representation:
// encoding snapshot fields into the booking record, rehydrating live
// machine state from it, and synthesizing snapshots for legacy bookings
// that predate the machine.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/roomflow/pkg/domain"
)

// Record fields owned by the machine core. Everything else in the booking
// record belongs to the surrounding system and is never touched.
const (
	FieldState        = "machineState"
	FieldContext      = "machineContext"
	FieldVariant      = "machineVariant"
	FieldLastAt       = "lastTransitionAt"
	FieldLegacyStatus = "status"
)

// EncodeSnapshot renders the snapshot as document-store fields. The state
// value keeps its dual shape (string or nested object for parallel regions),
// and the context is stored as a plain JSON object.
func EncodeSnapshot(snap *domain.Snapshot) (map[string]any, error) {
	raw, err := json.Marshal(snap.Context)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	var contextDoc map[string]any
	if err := json.Unmarshal(raw, &contextDoc); err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	return map[string]any{
		FieldState:   snap.Value.ToDocument(),
		FieldContext: contextDoc,
		FieldVariant: snap.MachineVariant,
		FieldLastAt:  snap.LastTransitionAt.Format(time.RFC3339Nano),
	}, nil
}

// DecodeSnapshot parses the machine fields back out of a record. It returns
// an error for missing or corrupt fields; the rehydrator decides whether to
// fall back to legacy migration.
func DecodeSnapshot(record map[string]any) (*domain.Snapshot, error) {
	rawState, ok := record[FieldState]
	if !ok {
		return nil, fmt.Errorf("record has no %s field", FieldState)
	}
	value, err := domain.ValueFromDocument(rawState)
	if err != nil {
		return nil, fmt.Errorf("decode state value: %w", err)
	}

	snap := &domain.Snapshot{Value: value}
	if variant, ok := record[FieldVariant].(string); ok {
		snap.MachineVariant = variant
	}

	if rawContext, ok := record[FieldContext]; ok {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			Result:     &snap.Context,
			TagName:    "mapstructure",
		})
		if err != nil {
			return nil, fmt.Errorf("build context decoder: %w", err)
		}
		if err := decoder.Decode(rawContext); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
	}

	if rawAt, ok := record[FieldLastAt].(string); ok {
		at, err := time.Parse(time.RFC3339Nano, rawAt)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", FieldLastAt, err)
		}
		snap.LastTransitionAt = at
	}
	return snap, nil
}

// TenantOf extracts the tenant identifier from a record, preferring the
// machine context over the surrounding booking document.
func TenantOf(record map[string]any) string {
	if contextDoc, ok := record[FieldContext].(map[string]any); ok {
		if tenant, ok := contextDoc["tenant"].(string); ok && tenant != "" {
			return tenant
		}
	}
	if tenant, ok := record["tenant"].(string); ok {
		return tenant
	}
	return ""
}
