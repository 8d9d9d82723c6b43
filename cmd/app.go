package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/backoffice"
	"github.com/SaugatGautam100/courseplex-sub001/cleanup"
	"github.com/SaugatGautam100/courseplex-sub001/config"
	"github.com/SaugatGautam100/courseplex-sub001/database"
	"github.com/SaugatGautam100/courseplex-sub001/internal/identity"
	"github.com/SaugatGautam100/courseplex-sub001/ledger"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/notify"
	"github.com/SaugatGautam100/courseplex-sub001/rewards"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// app holds every long-lived component built from the config.
type app struct {
	st         store.Store
	opts       ledger.Options
	dispatcher *notify.Dispatcher
	rewards    *rewards.Service
	cleanup    *cleanup.Engine
	office     *backoffice.Service
	closers    []func()
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	st, err := openStore(ctx, cfg, log, a)
	if err != nil {
		return nil, err
	}
	a.st = st

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}
	models.SetDateLocation(loc)
	a.opts = ledger.Options{
		CommissionRate: cfg.DefaultCommissionRate,
		Size:           cfg.LeaderboardSize,
		Location:       loc,
	}

	a.dispatcher = notify.NewDispatcher(buildNotifier(cfg, log, a), log)
	a.closers = append(a.closers, a.dispatcher.Wait)

	var idp cleanup.IdentityDeleter
	if cfg.IdentityAPIURL != "" {
		idp = identity.NewClient(cfg.IdentityAPIURL, cfg.IdentityAPIKey)
	} else {
		log.Warn("⚠️ IDENTITY_API_URL not set, identity records will not be removed")
	}

	fallback := models.MonthlyTarget{GoalAmount: models.NewAmount(cfg.MonthlyGoalAmount), Prize: cfg.MonthlyPrize}
	a.rewards = rewards.NewService(st, a.opts, fallback, a.dispatcher, log)
	a.cleanup = cleanup.NewEngine(st, idp, cleanup.Policy(cfg.ReferralPolicy), a.dispatcher, log)
	a.office = backoffice.NewService(st, cfg.DefaultCommissionRate, a.dispatcher, log)
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, a *app) (store.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := database.InitDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(pool, log)
		a.closers = append(a.closers, pg.Close, database.CloseDB)
		return pg, nil
	default:
		mem := store.NewMemoryStore()
		if cfg.SeedFile != "" {
			n, err := seedStore(ctx, mem, cfg.SeedFile)
			if err != nil {
				return nil, err
			}
			log.Info("🌱 memory store seeded", zap.String("file", cfg.SeedFile), zap.Int("collections", n))
		}
		return mem, nil
	}
}

// buildNotifier fans out to every configured channel. A channel that fails
// to start is logged and skipped.
func buildNotifier(cfg *config.Config, log *zap.Logger, a *app) notify.Notifier {
	var channels notify.Multi
	if cfg.SMTPHost != "" {
		channels = append(channels, notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Warn("⚠️ telegram notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, tg)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		k := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		channels = append(channels, k)
		a.closers = append(a.closers, func() { _ = k.Close() })
	}
	if len(channels) == 0 {
		log.Info("no notification channels configured")
		return nil
	}
	return channels
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func loadApp(ctx context.Context) (*app, error) {
	a, err := newApp(ctx, cfg, logging.Logger)
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	return a, nil
}
