package ledger

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// Inputs is one read of every collection the aggregator consumes.
type Inputs struct {
	Users       []models.User
	Commissions []models.Commission
	Orders      []models.Order
	Packages    []models.Package
	Cashbacks   []models.Cashback
}

// LoadInputs reads the input collections in parallel. The reads are not a
// consistent snapshot of the store.
func LoadInputs(ctx context.Context, st store.Store) (*Inputs, error) {
	var in Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { in.Users, err = models.LoadUsers(gctx, st); return })
	g.Go(func() (err error) { in.Commissions, err = models.LoadCommissions(gctx, st); return })
	g.Go(func() (err error) { in.Orders, err = models.LoadOrders(gctx, st); return })
	g.Go(func() (err error) { in.Packages, err = models.LoadPackages(gctx, st); return })
	g.Go(func() (err error) { in.Cashbacks, err = models.LoadCashbacks(gctx, st); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ledger inputs: %w", err)
	}
	return &in, nil
}

func (in *Inputs) Events(rate float64) []Event {
	return CommissionEvents(in.Commissions, in.Orders, in.Packages, rate)
}

func (in *Inputs) Leaderboards(now time.Time, opts Options) Leaderboards {
	return ComputeLeaderboards(in.Users, in.Commissions, in.Orders, in.Packages, now, opts)
}

// Earnings is UserEarnings over these inputs.
func (in *Inputs) Earnings(userID string, now time.Time, opts Options) Earnings {
	opts = opts.withDefaults()
	return UserEarnings(userID, in.Events(opts.CommissionRate), in.Cashbacks, now, opts.Location)
}
