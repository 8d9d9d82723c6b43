// Package store is the hierarchical document store every collection lives in.
// Collections are JSON object trees addressed by slash-separated paths
// ("users/u1/referrals/u2"). A single Update call applies many path writes
// atomically; two Update calls are not atomic together.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
)

var (
	ErrInvalidPath      = errors.New("store: invalid path")
	ErrOverlappingPaths = errors.New("store: update paths overlap")
	ErrClosed           = errors.New("store: closed")
)

// Store reads, subscribes to and atomically updates the document tree.
type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	// Update applies every path write in one atomic step. A nil value deletes
	// the path. Paths that are equal to, or ancestors of, another path in the
	// same call are rejected with ErrOverlappingPaths.
	Update(ctx context.Context, values map[string]any) error
	// Subscribe calls onChange with the current value and again after every
	// committed update touching path, one of its ancestors or descendants.
	Subscribe(path string, onChange func(Snapshot)) (unsubscribe func(), err error)
}

// Snapshot is an immutable view of the value at a path.
type Snapshot struct {
	Key   string
	value any
}

// NewSnapshot wraps an already normalized value.
func NewSnapshot(key string, value any) Snapshot {
	return Snapshot{Key: key, value: value}
}

func (s Snapshot) Exists() bool { return s.value != nil }

func (s Snapshot) Value() any { return s.value }

// Child returns the snapshot of a direct child. Missing children are empty snapshots.
func (s Snapshot) Child(key string) Snapshot {
	switch v := s.value.(type) {
	case map[string]any:
		return Snapshot{Key: key, value: v[key]}
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return Snapshot{Key: key}
		}
		return Snapshot{Key: key, value: v[i]}
	}
	return Snapshot{Key: key}
}

// Children returns every non-nil child ordered by key.
func (s Snapshot) Children() []Snapshot {
	switch v := s.value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k, child := range v {
			if child != nil {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		out := make([]Snapshot, 0, len(keys))
		for _, k := range keys {
			out = append(out, Snapshot{Key: k, value: v[k]})
		}
		return out
	case []any:
		out := make([]Snapshot, 0, len(v))
		for i, child := range v {
			if child != nil {
				out = append(out, Snapshot{Key: strconv.Itoa(i), value: child})
			}
		}
		return out
	}
	return nil
}

// Decode unmarshals the snapshot value into out.
func (s Snapshot) Decode(out any) error {
	raw, err := json.Marshal(s.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
