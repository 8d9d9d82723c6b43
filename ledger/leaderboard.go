package ledger

import (
	"sort"
	"time"

	"github.com/SaugatGautam100/courseplex-sub001/models"
)

// Entry is one leaderboard row.
type Entry struct {
	UserID   string      `json:"userId"`
	Name     string      `json:"name"`
	Earnings float64     `json:"earnings"`
	User     models.User `json:"-"`
}

type Leaderboards struct {
	Daily    []Entry `json:"daily"`
	Weekly   []Entry `json:"weekly"`
	Monthly  []Entry `json:"monthly"`
	Lifetime []Entry `json:"lifetime"`
}

// ComputeLeaderboards ranks visible referrers by summed earnings in each
// window. Rows are ordered by earnings descending, then user id ascending,
// and cut to opts.Size.
func ComputeLeaderboards(users []models.User, commissions []models.Commission, orders []models.Order, packages []models.Package, now time.Time, opts Options) Leaderboards {
	opts = opts.withDefaults()
	events := CommissionEvents(commissions, orders, packages, opts.CommissionRate)
	return Rank(models.UsersByID(users), events, now, opts)
}

// Rank builds all four boards from already selected events.
func Rank(users map[string]models.User, events []Event, now time.Time, opts Options) Leaderboards {
	opts = opts.withDefaults()
	w := WindowsAt(now, opts.Location)
	return Leaderboards{
		Daily:    top(users, SumByReferrer(users, events, w, Daily), opts.Size),
		Weekly:   top(users, SumByReferrer(users, events, w, Weekly), opts.Size),
		Monthly:  top(users, SumByReferrer(users, events, w, Monthly), opts.Size),
		Lifetime: top(users, SumByReferrer(users, events, w, Lifetime), opts.Size),
	}
}

// SumByReferrer totals the events of visible referrers inside win.
func SumByReferrer(users map[string]models.User, events []Event, w Windows, win Window) map[string]float64 {
	sums := make(map[string]float64)
	for _, e := range events {
		u, ok := users[e.ReferrerID]
		if !ok || !u.Visible() {
			continue
		}
		if !w.Contains(win, e.At) {
			continue
		}
		sums[e.ReferrerID] += e.Amount
	}
	return sums
}

func top(users map[string]models.User, sums map[string]float64, size int) []Entry {
	entries := make([]Entry, 0, len(sums))
	for id, total := range sums {
		u := users[id]
		entries = append(entries, Entry{UserID: id, Name: u.Name, Earnings: total, User: u})
	}
	sortEntries(entries)
	if len(entries) > size {
		entries = entries[:size]
	}
	return entries
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Earnings != entries[j].Earnings {
			return entries[i].Earnings > entries[j].Earnings
		}
		return entries[i].UserID < entries[j].UserID
	})
}
