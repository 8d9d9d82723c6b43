package ledger

import (
	"sync"
	"time"

	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/monitoring"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// Watch subscribes to the collections the leaderboards depend on and calls
// onUpdate with freshly computed boards after every change, once each
// collection has delivered its first snapshot. Calls to onUpdate are
// serialized. The returned stop func removes every subscription.
func Watch(st store.Store, opts Options, clock func() time.Time, onUpdate func(Leaderboards)) (func(), error) {
	if clock == nil {
		clock = time.Now
	}
	w := &watcher{opts: opts.withDefaults(), clock: clock, onUpdate: onUpdate}

	subs := []struct {
		path  string
		apply func(store.Snapshot)
	}{
		{models.UsersPath, func(s store.Snapshot) { w.users, _ = models.DecodeAll[models.User](s) }},
		{models.CommissionsPath, func(s store.Snapshot) { w.commissions, _ = models.DecodeAll[models.Commission](s) }},
		{models.OrdersPath, func(s store.Snapshot) { w.orders, _ = models.DecodeAll[models.Order](s) }},
		{models.PackagesPath, func(s store.Snapshot) { w.packages, _ = models.DecodeAll[models.Package](s) }},
	}

	var stops []func()
	stopAll := func() {
		for _, stop := range stops {
			stop()
		}
	}
	for i, sub := range subs {
		idx, apply := i, sub.apply
		stop, err := st.Subscribe(sub.path, func(s store.Snapshot) {
			w.mu.Lock()
			defer w.mu.Unlock()
			apply(s)
			w.seen |= 1 << idx
			w.recompute()
		})
		if err != nil {
			stopAll()
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stopAll, nil
}

type watcher struct {
	mu       sync.Mutex
	opts     Options
	clock    func() time.Time
	onUpdate func(Leaderboards)

	seen        int
	users       []models.User
	commissions []models.Commission
	orders      []models.Order
	packages    []models.Package
}

const allSeen = 1<<4 - 1

func (w *watcher) recompute() {
	if w.seen != allSeen {
		return
	}
	monitoring.LeaderboardRecomputations.Inc()
	w.onUpdate(ComputeLeaderboards(w.users, w.commissions, w.orders, w.packages, w.clock(), w.opts))
}
