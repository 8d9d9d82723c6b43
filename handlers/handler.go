package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/backoffice"
	"github.com/SaugatGautam100/courseplex-sub001/cleanup"
	"github.com/SaugatGautam100/courseplex-sub001/config"
	"github.com/SaugatGautam100/courseplex-sub001/ledger"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/rewards"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// Handler serves the JSON API over one store.
type Handler struct {
	cfg     *config.Config
	st      store.Store
	opts    ledger.Options
	rewards *rewards.Service
	cleanup *cleanup.Engine
	office  *backoffice.Service
	log     *zap.Logger
	now     func() time.Time
}

type Deps struct {
	Store      store.Store
	Ledger     ledger.Options
	Rewards    *rewards.Service
	Cleanup    *cleanup.Engine
	Backoffice *backoffice.Service
	Logger     *zap.Logger
}

func New(cfg *config.Config, d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = logging.Logger
	}
	return &Handler{
		cfg:     cfg,
		st:      d.Store,
		opts:    d.Ledger,
		rewards: d.Rewards,
		cleanup: d.Cleanup,
		office:  d.Backoffice,
		log:     log.With(zap.String("component", "http")),
		now:     time.Now,
	}
}
