package ledger

import (
	"sort"
	"time"

	"github.com/SaugatGautam100/courseplex-sub001/models"
)

// Achiever is a referrer whose monthly earnings reached the goal.
type Achiever struct {
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Earnings   float64 `json:"earnings"`
	PrizeGiven bool    `json:"prizeGiven"`
}

// MonthlyEarnings is the monthly-window total per visible referrer.
func MonthlyEarnings(users map[string]models.User, events []Event, now time.Time, loc *time.Location) map[string]float64 {
	return SumByReferrer(users, events, WindowsAt(now, loc), Monthly)
}

// MonthlyAchievers keeps referrers with earnings >= goal and marks those who
// already have a prize record for the month of now. An invalid or
// non-positive goal yields no achievers.
func MonthlyAchievers(target models.MonthlyTarget, monthly map[string]float64, users map[string]models.User, prizes []models.PrizeRecord, now time.Time, loc *time.Location) []Achiever {
	if !target.GoalAmount.Valid() || target.GoalAmount.Float() <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	year, month := t.Year(), int(t.Month())

	given := make(map[string]bool)
	for _, p := range prizes {
		if p.Year == year && p.Month == month {
			given[p.UserID] = true
		}
	}

	var out []Achiever
	for id, total := range monthly {
		if total < target.GoalAmount.Float() {
			continue
		}
		u := users[id]
		out = append(out, Achiever{
			UserID:     id,
			Name:       u.Name,
			Email:      u.Email,
			Earnings:   total,
			PrizeGiven: given[id],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Earnings != out[j].Earnings {
			return out[i].Earnings > out[j].Earnings
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
