package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Value is the tagged state-value variant: a simple named state, or a parallel
// composite whose regions each hold their own sub-value. It replaces the
// duck-typed "string or nested object" shape of the stored document with one
// explicit type and one containment helper used everywhere.
type Value struct {
	Name    string
	Regions map[string]Value
}

// Simple returns a leaf state value.
func Simple(name string) Value {
	return Value{Name: name}
}

// Parallel returns a composite state value with the given regions.
func Parallel(name string, regions map[string]Value) Value {
	return Value{Name: name, Regions: regions}
}

// IsParallel reports whether the value carries active regions.
func (v Value) IsParallel() bool {
	return len(v.Regions) > 0
}

// In reports whether the value's top-level state is the given name. This is
// the single containment check; callers never inspect Regions for identity.
func (v Value) In(name string) bool {
	return v.Name == name
}

// Region returns the sub-value for a region, and whether it exists.
func (v Value) Region(name string) (Value, bool) {
	sub, ok := v.Regions[name]
	return sub, ok
}

// WithRegion returns a copy of the value with one region replaced.
func (v Value) WithRegion(name string, sub Value) Value {
	regions := make(map[string]Value, len(v.Regions))
	for k, r := range v.Regions {
		regions[k] = r
	}
	regions[name] = sub
	return Value{Name: v.Name, Regions: regions}
}

// String renders "Name" for simple values and "Name(region:sub, ...)" for
// parallel ones, with regions in stable order.
func (v Value) String() string {
	if !v.IsParallel() {
		return v.Name
	}
	keys := make([]string, 0, len(v.Regions))
	for k := range v.Regions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+v.Regions[k].String())
	}
	return v.Name + "(" + strings.Join(parts, ", ") + ")"
}

// MarshalJSON encodes a simple value as a bare string and a parallel value as
// {"name": {"region": sub, ...}}, matching the stored document shape.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToDocument())
}

// UnmarshalJSON accepts either encoding.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueFromDocument(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ToDocument returns the document-store representation: a string for simple
// values, a nested map for parallel ones.
func (v Value) ToDocument() any {
	if !v.IsParallel() {
		return v.Name
	}
	regions := make(map[string]any, len(v.Regions))
	for k, sub := range v.Regions {
		regions[k] = sub.ToDocument()
	}
	return map[string]any{v.Name: regions}
}

// ValueFromDocument parses the document-store representation back into a Value.
func ValueFromDocument(raw any) (Value, error) {
	switch t := raw.(type) {
	case string:
		if t == "" {
			return Value{}, fmt.Errorf("empty state value")
		}
		return Simple(t), nil
	case map[string]any:
		if len(t) != 1 {
			return Value{}, fmt.Errorf("parallel state value must have exactly one top-level key, got %d", len(t))
		}
		for name, rawRegions := range t {
			regionMap, ok := rawRegions.(map[string]any)
			if !ok {
				return Value{}, fmt.Errorf("regions of %q must be an object, got %T", name, rawRegions)
			}
			regions := make(map[string]Value, len(regionMap))
			for region, sub := range regionMap {
				parsed, err := ValueFromDocument(sub)
				if err != nil {
					return Value{}, fmt.Errorf("region %q: %w", region, err)
				}
				regions[region] = parsed
			}
			return Parallel(name, regions), nil
		}
	}
	return Value{}, fmt.Errorf("unsupported state value type %T", raw)
}
