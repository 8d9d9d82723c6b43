package cleanup

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/internal/identity"
	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fakeIdentity struct {
	calls []string
	err   error
}

func (f *fakeIdentity) DeleteIdentity(_ context.Context, uid string) error {
	f.calls = append(f.calls, uid)
	return f.err
}

func newEngine(st store.Store, idp IdentityDeleter, policy Policy) *Engine {
	e := NewEngine(st, idp, policy, nil, zap.NewNop())
	e.now = func() time.Time { return now }
	return e
}

// seedFull builds a tree where u1 is referenced from every collection.
func seedFull(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	ms := now.UnixMilli()
	require.NoError(t, st.Update(context.Background(), map[string]any{
		"users/u1": map[string]any{"name": "Alice", "email": "alice@example.com", "status": "active"},
		"users/u2": map[string]any{"name": "Bob", "referrals": map[string]any{
			"u1": map[string]any{"name": "Alice", "email": "ALICE@example.com"},
			"u9": map[string]any{"name": "Zed", "email": "zed@example.com"},
		}},
		"users/u3": map[string]any{"name": "Cara", "referrals": map[string]any{
			"legacy": map[string]any{"email": "Alice@Example.com"},
		}},
		"orders/o1":             map[string]any{"userId": "u1", "status": "Completed", "courseId": "pkg1"},
		"orders/o2":             map[string]any{"userId": "u4", "referrerId": "u1", "status": "Completed"},
		"orders/o3":             map[string]any{"userId": "u4", "referrerId": "u2", "status": "Pending Approval"},
		"commissions/c1":        map[string]any{"referrerId": "u1", "userId": "u4", "amount": 500, "timestamp": ms},
		"commissions/c2":        map[string]any{"referrerId": "u1", "userId": "u5", "amount": 700, "timestamp": ms},
		"commissions/c3":        map[string]any{"referrerId": "u2", "userId": "u6", "amount": 300, "timestamp": ms},
		"cashbacks/cb1":         map[string]any{"userId": "u1", "referrerId": "u2", "amount": 50, "timestamp": ms},
		"cashbacks/cb2":         map[string]any{"userId": "u6", "referrerId": "u2", "amount": 25, "timestamp": ms},
		"specialPackages/sp1":   map[string]any{"name": "VIP", "assignedUsers": map[string]any{"u1": true, "u2": true}},
		"specialPackages/sp2":   map[string]any{"name": "Staff", "assignedUsers": map[string]any{"u2": true}},
		"kycRequests/u1":        map[string]any{"status": "pending"},
		"withdrawalRequests/u1": map[string]any{"w1": map[string]any{"amount": 1000, "status": "pending"}},
		"withdrawalRequests/u2": map[string]any{"w2": map[string]any{"amount": 200, "status": "pending"}},
	}))
	return st
}

func get(t *testing.T, st store.Store, path string) store.Snapshot {
	t.Helper()
	snap, err := st.Get(context.Background(), path)
	require.NoError(t, err)
	return snap
}

func keys(s store.Snapshot) []string {
	var out []string
	for _, c := range s.Children() {
		out = append(out, c.Key)
	}
	return out
}

func TestDeleteUser_Scenario(t *testing.T) {
	st := store.NewMemoryStore()
	ms := now.UnixMilli()
	require.NoError(t, st.Update(context.Background(), map[string]any{
		"users/u1":       map[string]any{"name": "Alice", "email": "alice@example.com"},
		"orders/o1":      map[string]any{"userId": "u1", "status": "Completed"},
		"commissions/c1": map[string]any{"referrerId": "u1", "amount": 500, "timestamp": ms},
		"commissions/c2": map[string]any{"referrerId": "u1", "amount": 1000, "timestamp": ms},
	}))

	res, err := newEngine(st, nil, PolicyCascade).DeleteUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemovedOrders)
	assert.Equal(t, 2, res.RemovedCommissions)
	assert.True(t, res.HadCompletedTransaction)

	var audit models.DeletedUser
	require.NoError(t, get(t, st, "deletedUsers/u1").Decode(&audit))
	assert.Equal(t, "Alice", audit.Name)
	assert.Equal(t, "alice@example.com", audit.Email)
	assert.True(t, audit.HadCompletedTransaction)
	assert.Equal(t, now.UnixMilli(), audit.DeletedAt.Millis())
}

func TestDeleteUser_Cascade(t *testing.T) {
	st := seedFull(t)
	idp := &fakeIdentity{}

	res, err := newEngine(st, idp, PolicyCascade).DeleteUser(context.Background(), "u1")
	require.NoError(t, err)

	require.NotNil(t, res.RemovedReferrals)
	assert.Equal(t, 2, *res.RemovedReferrals)
	assert.Equal(t, Result{
		UserID:                    "u1",
		RemovedOrders:             1,
		ClearedReferrerInOrders:   1,
		RemovedCommissions:        2,
		RemovedCashbacks:          1,
		ClearedSpecialAssignments: 1,
		RemovedReferrals:          res.RemovedReferrals,
		HadCompletedTransaction:   true,
		IdentityDeleted:           true,
	}, res)
	assert.Equal(t, []string{"u1"}, idp.calls)

	assert.False(t, get(t, st, "users/u1").Exists())
	assert.False(t, get(t, st, "kycRequests/u1").Exists())
	assert.False(t, get(t, st, "withdrawalRequests/u1").Exists())
	assert.True(t, get(t, st, "withdrawalRequests/u2").Exists())

	assert.Equal(t, []string{"o2", "o3"}, keys(get(t, st, "orders")))
	assert.False(t, get(t, st, "orders/o2/referrerId").Exists())
	assert.Equal(t, "u4", get(t, st, "orders/o2/userId").Value())
	assert.Equal(t, "u2", get(t, st, "orders/o3/referrerId").Value())

	assert.Equal(t, []string{"c3"}, keys(get(t, st, "commissions")))
	assert.Equal(t, []string{"cb2"}, keys(get(t, st, "cashbacks")))
	assert.Equal(t, []string{"u2"}, keys(get(t, st, "specialPackages/sp1/assignedUsers")))
	assert.Equal(t, "VIP", get(t, st, "specialPackages/sp1/name").Value())

	assert.Equal(t, []string{"u9"}, keys(get(t, st, "users/u2/referrals")))
	assert.False(t, get(t, st, "users/u3/referrals").Exists())
	assert.Equal(t, "Cara", get(t, st, "users/u3/name").Value())
}

func TestDeleteUser_PreserveKeepsReferralEdges(t *testing.T) {
	st := seedFull(t)

	res, err := newEngine(st, nil, PolicyPreserve).DeleteUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, res.RemovedReferrals)
	assert.False(t, res.IdentityDeleted)

	assert.Equal(t, []string{"u1", "u9"}, keys(get(t, st, "users/u2/referrals")))
	assert.Equal(t, []string{"legacy"}, keys(get(t, st, "users/u3/referrals")))
	assert.False(t, get(t, st, "users/u1").Exists())
	assert.Equal(t, []string{"c3"}, keys(get(t, st, "commissions")))
}

func TestDeleteUser_Idempotent(t *testing.T) {
	for _, policy := range []Policy{PolicyCascade, PolicyPreserve} {
		t.Run(string(policy), func(t *testing.T) {
			st := seedFull(t)
			e := newEngine(st, &fakeIdentity{}, policy)

			_, err := e.DeleteUser(context.Background(), "u1")
			require.NoError(t, err)
			once := get(t, st, "").Value()

			var batches []map[string]any
			st.SetWriteHook(func(values map[string]any) error {
				batches = append(batches, values)
				return nil
			})

			res, err := e.DeleteUser(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, once, get(t, st, "").Value())
			assert.Zero(t, res.RemovedOrders)
			assert.Zero(t, res.RemovedCommissions)
			assert.False(t, res.HadCompletedTransaction)

			// only the vacuous primary batch is written again
			require.Len(t, batches, 1)
			assert.Contains(t, batches[0], "users/u1")
		})
	}
}

func phaseOf(values map[string]any) string {
	for k := range values {
		switch {
		case k == "users/u1":
			return PhasePrimary
		case len(k) > len("users/") && k[:len("users/")] == "users/":
			return PhaseReferralEdges
		}
	}
	return PhaseDependents
}

func TestDeleteUser_BatchOrder(t *testing.T) {
	st := seedFull(t)
	var order []string
	st.SetWriteHook(func(values map[string]any) error {
		order = append(order, phaseOf(values))
		return nil
	})

	_, err := newEngine(st, nil, PolicyCascade).DeleteUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{PhaseReferralEdges, PhaseDependents, PhasePrimary}, order)
}

func TestDeleteUser_PrimaryFailureKeepsDependentsRemoved(t *testing.T) {
	st := seedFull(t)
	boom := errors.New("permission denied")
	st.SetWriteHook(func(values map[string]any) error {
		if _, ok := values["users/u1"]; ok {
			return boom
		}
		return nil
	})
	idp := &fakeIdentity{}

	_, err := newEngine(st, idp, PolicyCascade).DeleteUser(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCleanupFailed)
	assert.ErrorIs(t, err, boom)

	var cerr *CleanupError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, PhasePrimary, cerr.Phase)
	assert.Equal(t, []string{PhaseReferralEdges, PhaseDependents}, cerr.Committed)

	// dependents are gone, the user record is not, identity is untouched
	assert.Equal(t, []string{"c3"}, keys(get(t, st, "commissions")))
	assert.Equal(t, []string{"o2", "o3"}, keys(get(t, st, "orders")))
	assert.True(t, get(t, st, "deletedUsers/u1").Exists())
	assert.True(t, get(t, st, "users/u1").Exists())
	assert.Empty(t, idp.calls)
}

func TestDeleteUser_ReadFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(seedFull(t), nil, PolicyCascade).DeleteUser(ctx, "u1")
	var cerr *CleanupError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, PhaseRead, cerr.Phase)
	assert.Empty(t, cerr.Committed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeleteUser_IdentityErrorsAreSwallowed(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "already gone", err: identity.ErrNotFound},
		{name: "provider down", err: errors.New("502 bad gateway")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := seedFull(t)
			res, err := newEngine(st, &fakeIdentity{err: tt.err}, PolicyCascade).DeleteUser(context.Background(), "u1")
			require.NoError(t, err)
			assert.False(t, res.IdentityDeleted)
			assert.False(t, get(t, st, "users/u1").Exists())
		})
	}
}

func TestDeleteUser_InvalidID(t *testing.T) {
	for _, uid := range []string{"", "u1/orders", "a.b", "/u1"} {
		_, err := newEngine(seedFull(t), nil, PolicyCascade).DeleteUser(context.Background(), uid)
		assert.ErrorIs(t, err, ErrCleanupFailed, uid)
	}
}

func TestBuildPlan_NoOverlapWithinBatches(t *testing.T) {
	st := seedFull(t)
	e := newEngine(st, nil, PolicyCascade)
	snap, err := e.read(context.Background(), "u1")
	require.NoError(t, err)

	p := buildPlan(snap, "u1", PolicyCascade, now)
	var names []string
	for _, b := range p.batches() {
		names = append(names, b.name)
		paths := make([]string, 0, len(b.writes))
		for k := range b.writes {
			paths = append(paths, k)
		}
		sort.Strings(paths)
		for i := 1; i < len(paths); i++ {
			assert.NotContains(t, paths[i], paths[i-1]+"/", "batch %s", b.name)
		}
	}
	assert.Equal(t, []string{PhaseReferralEdges, PhaseDependents, PhasePrimary}, names)
}
