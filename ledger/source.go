package ledger

import (
	"math"
	"time"

	"github.com/SaugatGautam100/courseplex-sub001/models"
)

// DefaultCommissionRate is the affiliate share of a package price when an
// order carries no explicit commission amount.
const DefaultCommissionRate = 0.58

// Options tunes the aggregator. The zero value is usable.
type Options struct {
	// Rate applied to package prices for order-derived events.
	CommissionRate float64
	// Leaderboard length.
	Size int
	// Location the day/week/month boundaries are computed in.
	Location *time.Location
}

func DefaultOptions() Options {
	return Options{CommissionRate: DefaultCommissionRate, Size: 10, Location: time.Local}
}

func (o Options) withDefaults() Options {
	if o.CommissionRate <= 0 {
		o.CommissionRate = DefaultCommissionRate
	}
	if o.Size <= 0 {
		o.Size = 10
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Event is one valid earnings fact attributed to a referrer.
type Event struct {
	ReferrerID string
	Amount     float64
	At         time.Time
}

// CommissionEvents selects the event source. The commission log wins when it
// has any records; otherwise completed orders with a referrer are turned
// into synthetic events. Records with unparseable amounts or timestamps are
// dropped.
func CommissionEvents(commissions []models.Commission, orders []models.Order, packages []models.Package, rate float64) []Event {
	if len(commissions) > 0 {
		out := make([]Event, 0, len(commissions))
		for _, c := range commissions {
			if c.ReferrerID == "" || !c.Amount.Valid() || !c.Timestamp.Valid() {
				continue
			}
			out = append(out, Event{ReferrerID: c.ReferrerID, Amount: c.Amount.Float(), At: c.Timestamp.Time()})
		}
		return out
	}
	return orderEvents(orders, models.PackagesByID(packages), rate)
}

func orderEvents(orders []models.Order, packages map[string]models.Package, rate float64) []Event {
	if rate <= 0 {
		rate = DefaultCommissionRate
	}
	var out []Event
	for _, o := range orders {
		if o.Status != models.OrderCompleted || o.ReferrerID == "" || !o.CreatedAt.Valid() {
			continue
		}
		amount, ok := OrderCommission(o, packages, rate)
		if !ok {
			continue
		}
		out = append(out, Event{ReferrerID: o.ReferrerID, Amount: amount, At: o.CreatedAt.Time()})
	}
	return out
}

// OrderCommission is commissionAmount when the order carries one, otherwise
// floor(price * rate) of the ordered package.
func OrderCommission(o models.Order, packages map[string]models.Package, rate float64) (float64, bool) {
	if o.CommissionAmount != nil {
		return o.CommissionAmount.Float(), o.CommissionAmount.Valid()
	}
	pkg, ok := packages[o.CourseID]
	if !ok || !pkg.Price.Valid() {
		return 0, false
	}
	return math.Floor(pkg.Price.Float() * rate), true
}
