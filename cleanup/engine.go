// Package cleanup removes a user and every record that references them.
//
// Writes go out as separately committed batches, in order:
//
//	referral-edges  users/{other}/referrals/{key}          (cascade policy only)
//	dependents      orders, commissions, cashbacks, special package
//	                assignments, deletedUsers/{uid} audit record
//	primary         users/{uid}, kycRequests/{uid}, withdrawalRequests/{uid}
//
// Each batch is atomic on its own. Nothing is rolled back when a later batch
// fails, and reads are not isolated from concurrent writers.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/internal/identity"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/monitoring"
	"github.com/SaugatGautam100/courseplex-sub001/notify"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// Policy decides what happens to referral entries other users keep about
// the deleted user.
type Policy string

const (
	PolicyCascade  Policy = "cascade"
	PolicyPreserve Policy = "preserve"
)

// Batch names, in commit order.
const (
	PhaseRead          = "read"
	PhaseReferralEdges = "referral-edges"
	PhaseDependents    = "dependents"
	PhasePrimary       = "primary"
)

var tracer = otel.Tracer("courseplex/cleanup")

// IdentityDeleter removes the user's record at the identity provider.
type IdentityDeleter interface {
	DeleteIdentity(ctx context.Context, uid string) error
}

// Result counts what a deletion touched. RemovedReferrals is only set under
// the cascade policy.
type Result struct {
	UserID                    string `json:"userId"`
	RemovedOrders             int    `json:"removedOrders"`
	ClearedReferrerInOrders   int    `json:"clearedReferrerInOrders"`
	RemovedCommissions        int    `json:"removedCommissions"`
	RemovedCashbacks          int    `json:"removedCashbacks"`
	ClearedSpecialAssignments int    `json:"clearedSpecialAssignments"`
	RemovedReferrals          *int   `json:"removedReferrals,omitempty"`
	HadCompletedTransaction   bool   `json:"hadCompletedTransaction"`
	IdentityDeleted           bool   `json:"identityDeleted"`
}

type Engine struct {
	st       store.Store
	identity IdentityDeleter
	policy   Policy
	notifier *notify.Dispatcher
	log      *zap.Logger
	now      func() time.Time
}

// NewEngine builds an engine. idp and notifier may be nil; an unknown policy
// falls back to cascade.
func NewEngine(st store.Store, idp IdentityDeleter, policy Policy, notifier *notify.Dispatcher, log *zap.Logger) *Engine {
	if policy != PolicyPreserve {
		policy = PolicyCascade
	}
	if log == nil {
		log = logging.Logger
	}
	return &Engine{
		st:       st,
		identity: idp,
		policy:   policy,
		notifier: notifier,
		log:      log.With(zap.String("component", "cleanup"), zap.String("policy", string(policy))),
		now:      time.Now,
	}
}

func (e *Engine) Policy() Policy { return e.policy }

// DeleteUser runs the full cascade for uid. Running it again for a user
// that is already gone succeeds and changes nothing.
func (e *Engine) DeleteUser(ctx context.Context, uid string) (Result, error) {
	ctx, span := tracer.Start(ctx, "cleanup.DeleteUser", trace.WithAttributes(
		attribute.String("user.id", uid),
		attribute.String("cleanup.policy", string(e.policy)),
	))
	defer span.End()

	log := e.log.With(zap.String("user_id", uid), logging.WithTrace(ctx))

	if segs, err := store.SplitPath(uid); err != nil || len(segs) != 1 || segs[0] != uid {
		err := &CleanupError{UserID: uid, Phase: PhaseRead, Err: fmt.Errorf("invalid user id %q", uid)}
		return Result{UserID: uid}, e.fail(span, log, err)
	}

	snap, err := e.read(ctx, uid)
	if err != nil {
		return Result{UserID: uid}, e.fail(span, log, &CleanupError{UserID: uid, Phase: PhaseRead, Err: err})
	}

	p := buildPlan(snap, uid, e.policy, e.now())
	res := p.result

	var committed []string
	for _, b := range p.batches() {
		if len(b.writes) == 0 && b.name != PhasePrimary {
			continue
		}
		if err := e.commit(ctx, b); err != nil {
			cerr := &CleanupError{UserID: uid, Phase: b.name, Committed: committed, Err: err}
			return res, e.fail(span, log, cerr)
		}
		committed = append(committed, b.name)
		log.Debug("cleanup batch committed", zap.String("phase", b.name), zap.Int("writes", len(b.writes)))
	}

	res.IdentityDeleted = e.deleteIdentity(ctx, log, uid)

	monitoring.CleanupRunsTotal.WithLabelValues("success").Inc()
	monitoring.CleanupRecordsTotal.WithLabelValues("orders").Add(float64(res.RemovedOrders))
	monitoring.CleanupRecordsTotal.WithLabelValues("order_referrers").Add(float64(res.ClearedReferrerInOrders))
	monitoring.CleanupRecordsTotal.WithLabelValues("commissions").Add(float64(res.RemovedCommissions))
	monitoring.CleanupRecordsTotal.WithLabelValues("cashbacks").Add(float64(res.RemovedCashbacks))
	monitoring.CleanupRecordsTotal.WithLabelValues("special_assignments").Add(float64(res.ClearedSpecialAssignments))
	if res.RemovedReferrals != nil {
		monitoring.CleanupRecordsTotal.WithLabelValues("referrals").Add(float64(*res.RemovedReferrals))
	}

	log.Info("🗑️ user deleted",
		zap.Strings("committed", committed),
		zap.Int("removed_orders", res.RemovedOrders),
		zap.Int("cleared_referrer_in_orders", res.ClearedReferrerInOrders),
		zap.Int("removed_commissions", res.RemovedCommissions),
		zap.Int("removed_cashbacks", res.RemovedCashbacks),
		zap.Int("cleared_special_assignments", res.ClearedSpecialAssignments),
		zap.Bool("had_completed_transaction", res.HadCompletedTransaction),
		zap.Bool("identity_deleted", res.IdentityDeleted))

	if p.email != "" {
		e.notifier.Dispatch(notify.Message{
			Kind:    notify.KindUserDeleted,
			ToEmail: p.email,
			ToName:  p.name,
			Data:    map[string]any{"userId": uid},
		})
	}
	return res, nil
}

func (e *Engine) commit(ctx context.Context, b batch) error {
	ctx, span := tracer.Start(ctx, "cleanup."+b.name, trace.WithAttributes(attribute.Int("cleanup.writes", len(b.writes))))
	defer span.End()
	if err := e.st.Update(ctx, b.writes); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// deleteIdentity never fails the cleanup. A provider error is logged and
// the record is treated as already gone.
func (e *Engine) deleteIdentity(ctx context.Context, log *zap.Logger, uid string) bool {
	if e.identity == nil {
		return false
	}
	err := e.identity.DeleteIdentity(ctx, uid)
	switch {
	case err == nil:
		return true
	case errors.Is(err, identity.ErrNotFound):
		log.Info("identity record already gone")
	default:
		log.Warn("⚠️ identity deletion failed, ignoring", zap.Error(err))
	}
	return false
}

func (e *Engine) fail(span trace.Span, log *zap.Logger, err *CleanupError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	monitoring.CleanupRunsTotal.WithLabelValues("failed").Inc()
	log.Error("❌ user cleanup failed",
		zap.String("failed_phase", err.Phase),
		zap.Strings("committed", err.Committed),
		zap.Error(err.Err))
	return err
}
