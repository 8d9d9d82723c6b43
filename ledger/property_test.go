package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/SaugatGautam100/courseplex-sub001/models"
)

// genEvents builds commission logs over six referrers, half of them hidden,
// with timestamps spread over the 90 days before now.
func genEvents() gopter.Gen {
	return gen.SliceOf(gopter.CombineGens(
		gen.IntRange(0, 5),
		gen.IntRange(0, 10000),
		gen.Int64Range(0, int64(90*24*time.Hour/time.Minute)),
	).Map(func(vals []any) models.Commission {
		ref := fmt.Sprintf("u%d", vals[0].(int))
		at := now.Add(-time.Duration(vals[2].(int64)) * time.Minute)
		return models.Commission{
			ReferrerID: ref,
			Amount:     models.NewAmount(float64(vals[1].(int))),
			Timestamp:  models.TimestampOf(at),
		}
	}))
}

func propertyUsers() []models.User {
	rejected := user("u4", "Rita")
	rejected.Status = models.UserRejected
	return []models.User{
		user("u0", "Alice"),
		user("u1", "Bob"),
		user("u2", "Cara"),
		user("u3", ""),
		rejected,
		// u5 has no user record at all
	}
}

func TestLedgerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	users := propertyUsers()
	byID := models.UsersByID(users)
	opts := utcOpts()
	opts.Size = 100

	properties.Property("hidden referrers never appear on any board", prop.ForAll(
		func(commissions []models.Commission) bool {
			boards := ComputeLeaderboards(users, commissions, nil, nil, now, opts)
			for _, board := range [][]Entry{boards.Daily, boards.Weekly, boards.Monthly, boards.Lifetime} {
				for _, e := range board {
					if e.UserID == "u3" || e.UserID == "u4" || e.UserID == "u5" {
						return false
					}
				}
			}
			return true
		},
		genEvents(),
	))

	properties.Property("lifetime >= monthly >= weekly >= daily per user", prop.ForAll(
		func(commissions []models.Commission) bool {
			events := CommissionEvents(commissions, nil, nil, opts.CommissionRate)
			w := WindowsAt(now, time.UTC)
			daily := SumByReferrer(byID, events, w, Daily)
			weekly := SumByReferrer(byID, events, w, Weekly)
			monthly := SumByReferrer(byID, events, w, Monthly)
			lifetime := SumByReferrer(byID, events, w, Lifetime)
			for id := range byID {
				if !(lifetime[id] >= monthly[id] && monthly[id] >= weekly[id] && weekly[id] >= daily[id]) {
					return false
				}
			}
			return true
		},
		genEvents(),
	))

	properties.Property("boards are sorted by earnings descending", prop.ForAll(
		func(commissions []models.Commission) bool {
			boards := ComputeLeaderboards(users, commissions, nil, nil, now, opts)
			for _, board := range [][]Entry{boards.Daily, boards.Weekly, boards.Monthly, boards.Lifetime} {
				for i := 1; i < len(board); i++ {
					if board[i-1].Earnings < board[i].Earnings {
						return false
					}
				}
			}
			return true
		},
		genEvents(),
	))

	properties.TestingRun(t)
}
