package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.Update(context.Background(), map[string]any{
		"users/u1": map[string]any{
			"name":      "Alice",
			"email":     "alice@example.com",
			"referrals": map[string]any{"u2": map[string]any{"name": "Bob"}},
		},
		"users/u2":  map[string]any{"name": "Bob"},
		"orders/o1": map[string]any{"userId": "u2", "referrerId": "u1", "status": "Completed"},
	}))
	return s
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr bool
	}{
		{name: "root", path: "", want: nil},
		{name: "slashes trimmed", path: "/users/u1/", want: []string{"users", "u1"}},
		{name: "empty segment", path: "users//u1", wantErr: true},
		{name: "forbidden char", path: "users/a.b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore_GetNested(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	snap, err := s.Get(ctx, "users/u1/referrals/u2/name")
	require.NoError(t, err)
	assert.Equal(t, "Bob", snap.Value())

	missing, err := s.Get(ctx, "users/nobody")
	require.NoError(t, err)
	assert.False(t, missing.Exists())

	users, err := s.Get(ctx, "users")
	require.NoError(t, err)
	children := users.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "u1", children[0].Key)
	assert.Equal(t, "u2", children[1].Key)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	snap, err := s.Get(ctx, "users/u2")
	require.NoError(t, err)
	snap.Value().(map[string]any)["name"] = "Mallory"

	again, err := s.Get(ctx, "users/u2/name")
	require.NoError(t, err)
	assert.Equal(t, "Bob", again.Value())
}

func TestMemoryStore_UpdateDeletesAndPrunes(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, map[string]any{
		"users/u1/referrals/u2": nil,
		"orders/o1/referrerId":  nil,
	}))

	refs, err := s.Get(ctx, "users/u1/referrals")
	require.NoError(t, err)
	assert.False(t, refs.Exists(), "empty referrals object must be pruned")

	order, err := s.Get(ctx, "orders/o1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"userId": "u2", "status": "Completed"}, order.Value())
}

func TestMemoryStore_UpdateRejectsOverlap(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.Update(ctx, map[string]any{
		"users/u1":              nil,
		"users/u1/referrals/u2": nil,
	})
	require.ErrorIs(t, err, ErrOverlappingPaths)

	err = s.Update(ctx, map[string]any{
		"users/u1":  nil,
		"/users/u1": nil,
	})
	require.ErrorIs(t, err, ErrOverlappingPaths)

	snap, err := s.Get(ctx, "users/u1/name")
	require.NoError(t, err)
	assert.Equal(t, "Alice", snap.Value(), "rejected update must not apply anything")
}

func TestMemoryStore_DeleteMissingIsNoop(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, map[string]any{
		"users/ghost":          nil,
		"users/u2/name/deeper": nil,
		"kycRequests/ghost":    nil,
	}))
	snap, err := s.Get(ctx, "users/u2/name")
	require.NoError(t, err)
	assert.Equal(t, "Bob", snap.Value())
}

func TestMemoryStore_WriteHookAborts(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var seen int
	s.SetWriteHook(func(values map[string]any) error {
		seen++
		return boom
	})
	err := s.Update(ctx, map[string]any{"users/u2": nil})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, seen)

	s.SetWriteHook(nil)
	snap, err := s.Get(ctx, "users/u2")
	require.NoError(t, err)
	assert.True(t, snap.Exists())
}

func TestMemoryStore_Subscribe(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	var got []int
	unsubscribe, err := s.Subscribe("users", func(snap Snapshot) {
		got = append(got, len(snap.Children()))
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, map[string]any{"users/u3": map[string]any{"name": "Cara"}}))
	require.NoError(t, s.Update(ctx, map[string]any{"orders/o2": map[string]any{"userId": "u3"}}))
	require.NoError(t, s.Update(ctx, map[string]any{"users/u3/name": "Carol"}))

	unsubscribe()
	require.NoError(t, s.Update(ctx, map[string]any{"users/u4": map[string]any{"name": "Dan"}}))

	assert.Equal(t, []int{2, 3, 3}, got)
}

func TestMemoryStore_ConcurrentUpdatesDeliverInCommitOrder(t *testing.T) {
	const writers, rounds = 8, 200
	s := NewMemoryStore()
	ctx := context.Background()

	var (
		mu        sync.Mutex
		last      = map[string]float64{}
		regressed []string
		final     any
	)
	unsubscribe, err := s.Subscribe("counters", func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		values, _ := snap.Value().(map[string]any)
		for k, v := range values {
			n := v.(float64)
			if n < last[k] {
				regressed = append(regressed, fmt.Sprintf("%s: %v after %v", k, n, last[k]))
			}
			last[k] = n
		}
		final = snap.Value()
	})
	require.NoError(t, err)
	defer unsubscribe()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for i := 1; i <= rounds; i++ {
				assert.NoError(t, s.Update(ctx, map[string]any{"counters/" + key: i}))
			}
		}(fmt.Sprintf("w%d", w))
	}
	wg.Wait()

	snap, err := s.Get(ctx, "counters")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, regressed)
	assert.Equal(t, snap.Value(), final)
	assert.Len(t, last, writers)
	for k, v := range last {
		assert.Equal(t, float64(rounds), v, k)
	}
}

func TestMemoryStore_UpdateFromCallbackIsQueued(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var got []any
	_, err := s.Subscribe("n", func(snap Snapshot) {
		got = append(got, snap.Value())
		if v, ok := snap.Value().(float64); ok && v < 3 {
			require.NoError(t, s.Update(ctx, map[string]any{"n": v + 1}))
		}
	})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, map[string]any{"n": 1}))

	assert.Equal(t, []any{nil, 1.0, 2.0, 3.0}, got)
}

func TestSnapshot_Decode(t *testing.T) {
	snap := NewSnapshot("o1", map[string]any{"userId": "u1", "status": "Completed"})
	var out struct {
		UserID string `json:"userId"`
		Status string `json:"status"`
	}
	require.NoError(t, snap.Decode(&out))
	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, "Completed", out.Status)
}
