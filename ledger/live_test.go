package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

func TestWatch_RecomputesOnEveryChange(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, map[string]any{
		"users/u1":       map[string]any{"name": "Alice", "status": "active"},
		"users/u2":       map[string]any{"name": "Bob", "status": "active"},
		"commissions/c1": map[string]any{"referrerId": "u1", "amount": 500, "timestamp": now.UnixMilli()},
	}))

	var got []Leaderboards
	stop, err := Watch(st, utcOpts(), func() time.Time { return now }, func(b Leaderboards) {
		got = append(got, b)
	})
	require.NoError(t, err)
	defer stop()

	// orders and packages are empty but still count as delivered
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Alice=500"}, names(got[0].Daily))

	require.NoError(t, st.Update(ctx, map[string]any{
		"commissions/c2": map[string]any{"referrerId": "u2", "amount": "800", "timestamp": now.UnixMilli()},
	}))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Bob=800", "Alice=500"}, names(got[1].Daily))

	// renaming Bob to nothing hides him on the next push
	require.NoError(t, st.Update(ctx, map[string]any{"users/u2/name": ""}))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Alice=500"}, names(got[2].Daily))

	stop()
	require.NoError(t, st.Update(ctx, map[string]any{"users/u3": map[string]any{"name": "Cara"}}))
	assert.Len(t, got, 3)
}
