package ledger

import (
	"time"

	"github.com/SaugatGautam100/courseplex-sub001/models"
)

// Earnings is one user's dashboard summary. Commission and Cashback are
// lifetime figures; the window fields include both.
type Earnings struct {
	Today      float64 `json:"today"`
	Week       float64 `json:"week"`
	Month      float64 `json:"month"`
	Lifetime   float64 `json:"lifetime"`
	Commission float64 `json:"commission"`
	Cashback   float64 `json:"cashback"`
}

// UserEarnings adds up the commissions userID earned as a referrer and the
// cashbacks it received as a buyer.
func UserEarnings(userID string, events []Event, cashbacks []models.Cashback, now time.Time, loc *time.Location) Earnings {
	w := WindowsAt(now, loc)
	var out Earnings
	add := func(amount float64, at time.Time) {
		out.Lifetime += amount
		if w.Contains(Monthly, at) {
			out.Month += amount
		}
		if w.Contains(Weekly, at) {
			out.Week += amount
		}
		if w.Contains(Daily, at) {
			out.Today += amount
		}
	}
	for _, e := range events {
		if e.ReferrerID != userID {
			continue
		}
		out.Commission += e.Amount
		add(e.Amount, e.At)
	}
	for _, c := range cashbacks {
		if c.UserID != userID || !c.Amount.Valid() || !c.Timestamp.Valid() {
			continue
		}
		out.Cashback += c.Amount.Float()
		add(c.Amount.Float(), c.Timestamp.Time())
	}
	return out
}
