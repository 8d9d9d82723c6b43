// Package rewards manages the admin monthly earnings target and the prizes
// awarded to referrers who reach it.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SaugatGautam100/courseplex-sub001/ledger"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/monitoring"
	"github.com/SaugatGautam100/courseplex-sub001/notify"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

var (
	ErrInvalidTarget  = errors.New("rewards: goal amount must be a positive number")
	ErrNotAchiever    = errors.New("rewards: user has not reached the monthly goal")
	ErrAlreadyAwarded = errors.New("rewards: prize already awarded this month")
)

var tracer = otel.Tracer("courseplex/rewards")

// LoadTarget reads settings/monthlyTarget, falling back when it was never saved.
func LoadTarget(ctx context.Context, st store.Store, fallback models.MonthlyTarget) (models.MonthlyTarget, error) {
	snap, err := st.Get(ctx, models.MonthlyTargetPath)
	if err != nil {
		return models.MonthlyTarget{}, fmt.Errorf("load monthly target: %w", err)
	}
	if !snap.Exists() {
		return fallback, nil
	}
	var t models.MonthlyTarget
	if err := models.Decode(snap, &t); err != nil {
		return models.MonthlyTarget{}, fmt.Errorf("decode monthly target: %w", err)
	}
	return t, nil
}

func SaveTarget(ctx context.Context, st store.Store, t models.MonthlyTarget) error {
	if !t.GoalAmount.Valid() || t.GoalAmount.Float() <= 0 {
		return ErrInvalidTarget
	}
	return st.Update(ctx, map[string]any{
		models.MonthlyTargetPath: map[string]any{
			"goalAmount": t.GoalAmount.Float(),
			"prize":      t.Prize,
		},
	})
}

type Service struct {
	st       store.Store
	opts     ledger.Options
	fallback models.MonthlyTarget
	notifier *notify.Dispatcher
	log      *zap.Logger
	newID    func() string
}

func NewService(st store.Store, opts ledger.Options, fallback models.MonthlyTarget, notifier *notify.Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = logging.Logger
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		st:       st,
		opts:     opts,
		fallback: fallback,
		notifier: notifier,
		log:      log.With(zap.String("component", "rewards")),
		newID:    uuid.NewString,
	}
}

func (s *Service) Target(ctx context.Context) (models.MonthlyTarget, error) {
	return LoadTarget(ctx, s.st, s.fallback)
}

type snapshot struct {
	target models.MonthlyTarget
	inputs *ledger.Inputs
	prizes []models.PrizeRecord
}

func (s *Service) read(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.target, err = s.Target(gctx); return })
	g.Go(func() (err error) { snap.inputs, err = ledger.LoadInputs(gctx, s.st); return })
	g.Go(func() (err error) { snap.prizes, err = models.LoadPrizeRecords(gctx, s.st); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Service) achievers(snap *snapshot, now time.Time) []ledger.Achiever {
	users := models.UsersByID(snap.inputs.Users)
	events := snap.inputs.Events(s.opts.CommissionRate)
	monthly := ledger.MonthlyEarnings(users, events, now, s.opts.Location)
	return ledger.MonthlyAchievers(snap.target, monthly, users, snap.prizes, now, s.opts.Location)
}

// Achievers lists this month's referrers at or above the goal together with
// the target they were measured against.
func (s *Service) Achievers(ctx context.Context, now time.Time) ([]ledger.Achiever, models.MonthlyTarget, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, models.MonthlyTarget{}, err
	}
	return s.achievers(snap, now), snap.target, nil
}

// Award records the current month's prize for userID. Two concurrent calls
// for the same user can both pass the PrizeGiven check.
func (s *Service) Award(ctx context.Context, userID string, now time.Time) (models.PrizeRecord, error) {
	ctx, span := tracer.Start(ctx, "rewards.Award", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	snap, err := s.read(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.PrizeRecord{}, err
	}

	var winner *ledger.Achiever
	for _, a := range s.achievers(snap, now) {
		if a.UserID == userID {
			winner = &a
			break
		}
	}
	if winner == nil {
		return models.PrizeRecord{}, ErrNotAchiever
	}
	if winner.PrizeGiven {
		return models.PrizeRecord{}, ErrAlreadyAwarded
	}

	loc := s.opts.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	rec := models.PrizeRecord{
		ID:         s.newID(),
		UserID:     userID,
		UserName:   winner.Name,
		Month:      int(local.Month()),
		Year:       local.Year(),
		Prize:      snap.target.Prize,
		GoalAmount: snap.target.GoalAmount,
		Earnings:   models.NewAmount(winner.Earnings),
		AwardedAt:  models.TimestampOf(now),
	}

	err = s.st.Update(ctx, map[string]any{
		store.JoinPath(models.PrizeRecordsPath, rec.ID): rec,
		store.JoinPath(models.UsersPath, userID, "monthlyPrizes", models.MonthKey(rec.Year, rec.Month)): map[string]any{
			"prize":     rec.Prize,
			"awardedAt": rec.AwardedAt,
		},
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.PrizeRecord{}, fmt.Errorf("award prize: %w", err)
	}

	monitoring.PrizesAwardedTotal.Inc()
	s.log.Info("🏆 monthly prize awarded",
		zap.String("user_id", userID),
		zap.String("month", models.MonthKey(rec.Year, rec.Month)),
		zap.Float64("earnings", winner.Earnings),
		logging.WithTrace(ctx))

	s.notifier.Dispatch(notify.Message{
		Kind:    notify.KindPrizeAwarded,
		ToEmail: winner.Email,
		ToName:  winner.Name,
		Data: map[string]any{
			"prize":      rec.Prize,
			"earnings":   winner.Earnings,
			"goalAmount": rec.GoalAmount.Float(),
			"month":      models.MonthKey(rec.Year, rec.Month),
		},
	})
	return rec, nil
}
