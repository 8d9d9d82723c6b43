package cleanup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

type collections struct {
	users           store.Snapshot
	orders          store.Snapshot
	commissions     store.Snapshot
	cashbacks       store.Snapshot
	specialPackages store.Snapshot
}

// read loads users first, then the dependent collections in parallel.
func (e *Engine) read(ctx context.Context, uid string) (*collections, error) {
	var c collections
	var err error
	if c.users, err = e.st.Get(ctx, models.UsersPath); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	get := func(path string, dst *store.Snapshot) {
		g.Go(func() error {
			snap, err := e.st.Get(gctx, path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			*dst = snap
			return nil
		})
	}
	get(models.OrdersPath, &c.orders)
	get(models.CommissionsPath, &c.commissions)
	get(models.CashbacksPath, &c.cashbacks)
	get(models.SpecialPackagesPath, &c.specialPackages)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &c, nil
}

type batch struct {
	name   string
	writes map[string]any
}

type plan struct {
	name   string
	email  string
	edges  map[string]any
	deps   map[string]any
	prim   map[string]any
	result Result
}

func (p *plan) batches() []batch {
	out := make([]batch, 0, 3)
	if p.edges != nil {
		out = append(out, batch{name: PhaseReferralEdges, writes: p.edges})
	}
	return append(out,
		batch{name: PhaseDependents, writes: p.deps},
		batch{name: PhasePrimary, writes: p.prim},
	)
}

// buildPlan turns the snapshot into the three write batches. It never reads
// the store itself.
func buildPlan(c *collections, uid string, policy Policy, now time.Time) *plan {
	target := c.users.Child(uid)
	p := &plan{
		name:   stringField(target, "name"),
		email:  stringField(target, "email"),
		deps:   make(map[string]any),
		prim:   make(map[string]any),
		result: Result{UserID: uid},
	}

	if policy == PolicyCascade {
		p.edges = make(map[string]any)
		for _, other := range c.users.Children() {
			if other.Key == uid {
				continue
			}
			for _, ref := range other.Child("referrals").Children() {
				refEmail := stringField(ref, "email")
				if ref.Key == uid || (p.email != "" && strings.EqualFold(refEmail, p.email)) {
					p.edges[store.JoinPath(models.UsersPath, other.Key, "referrals", ref.Key)] = nil
				}
			}
		}
		removed := len(p.edges)
		p.result.RemovedReferrals = &removed
	}

	for _, o := range c.orders.Children() {
		switch {
		case stringField(o, "userId") == uid:
			p.deps[store.JoinPath(models.OrdersPath, o.Key)] = nil
			p.result.RemovedOrders++
			if stringField(o, "status") == models.OrderCompleted {
				p.result.HadCompletedTransaction = true
			}
		case stringField(o, "referrerId") == uid:
			p.deps[store.JoinPath(models.OrdersPath, o.Key, "referrerId")] = nil
			p.result.ClearedReferrerInOrders++
		}
	}

	for _, ev := range c.commissions.Children() {
		if references(ev, uid) {
			p.deps[store.JoinPath(models.CommissionsPath, ev.Key)] = nil
			p.result.RemovedCommissions++
			p.result.HadCompletedTransaction = true
		}
	}
	for _, ev := range c.cashbacks.Children() {
		if references(ev, uid) {
			p.deps[store.JoinPath(models.CashbacksPath, ev.Key)] = nil
			p.result.RemovedCashbacks++
			p.result.HadCompletedTransaction = true
		}
	}

	for _, pkg := range c.specialPackages.Children() {
		if pkg.Child("assignedUsers").Child(uid).Exists() {
			p.deps[store.JoinPath(models.SpecialPackagesPath, pkg.Key, "assignedUsers", uid)] = nil
			p.result.ClearedSpecialAssignments++
		}
	}

	if p.result.HadCompletedTransaction {
		p.deps[store.JoinPath(models.DeletedUsersPath, uid)] = models.DeletedUser{
			Name:                    p.name,
			Email:                   p.email,
			DeletedAt:               models.TimestampOf(now),
			HadCompletedTransaction: true,
		}
	}

	p.prim[store.JoinPath(models.UsersPath, uid)] = nil
	p.prim[store.JoinPath(models.KYCRequestsPath, uid)] = nil
	p.prim[store.JoinPath(models.WithdrawalRequestsPath, uid)] = nil
	return p
}

func references(ev store.Snapshot, uid string) bool {
	return stringField(ev, "referrerId") == uid || stringField(ev, "userId") == uid
}

func stringField(s store.Snapshot, key string) string {
	v, _ := s.Child(key).Value().(string)
	return v
}
