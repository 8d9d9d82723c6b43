// Package ledger derives earnings totals, leaderboards and monthly-target
// achievers from the append-only commission log. Everything here is a pure
// function of its inputs and is recomputed on every read.
package ledger

import "time"

type Window string

const (
	Daily    Window = "daily"
	Weekly   Window = "weekly"
	Monthly  Window = "monthly"
	Lifetime Window = "lifetime"
)

// Windows holds the lower bounds of the bounded windows at one instant.
type Windows struct {
	Today time.Time
	Week  time.Time // Sunday 00:00
	Month time.Time
}

// WindowsAt computes window starts in loc. A nil loc means time.Local.
func WindowsAt(now time.Time, loc *time.Location) Windows {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	y, m, d := t.Date()
	return Windows{
		Today: time.Date(y, m, d, 0, 0, 0, 0, loc),
		Week:  time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, loc),
		Month: time.Date(y, m, 1, 0, 0, 0, 0, loc),
	}
}

// Contains reports whether at falls inside win. Lifetime has no lower bound.
func (w Windows) Contains(win Window, at time.Time) bool {
	switch win {
	case Daily:
		return !at.Before(w.Today)
	case Weekly:
		return !at.Before(w.Week)
	case Monthly:
		return !at.Before(w.Month)
	}
	return true
}
