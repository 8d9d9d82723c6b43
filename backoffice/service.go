// Package backoffice holds the admin mutations behind the approval queues:
// pending orders, KYC submissions and withdrawal requests.
package backoffice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/ledger"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/notify"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

var (
	ErrNotFound            = errors.New("backoffice: record not found")
	ErrInvalidTransition   = errors.New("backoffice: record is not pending")
	ErrInsufficientBalance = errors.New("backoffice: insufficient balance")
	ErrInvalidAmount       = errors.New("backoffice: invalid amount")
)

type Service struct {
	st       store.Store
	rate     float64
	notifier *notify.Dispatcher
	log      *zap.Logger
	newID    func() string
}

// NewService uses rate for orders whose package and referrer carry no
// commission override.
func NewService(st store.Store, rate float64, notifier *notify.Dispatcher, log *zap.Logger) *Service {
	if rate <= 0 {
		rate = ledger.DefaultCommissionRate
	}
	if log == nil {
		log = logging.Logger
	}
	return &Service{
		st:       st,
		rate:     rate,
		notifier: notifier,
		log:      log.With(zap.String("component", "backoffice")),
		newID:    uuid.NewString,
	}
}

// load decodes the value at path into out. A missing path is ErrNotFound
// unless optional is set, in which case out is left untouched.
func (s *Service) load(ctx context.Context, path string, out any, optional bool) (bool, error) {
	snap, err := s.st.Get(ctx, path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if !snap.Exists() {
		if optional {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err := models.Decode(snap, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
