package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/monitoring"
)

const defaultTimeout = 15 * time.Second

// Dispatcher sends notifications in the background. A nil *Dispatcher
// drops every message.
type Dispatcher struct {
	n       Notifier
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{n: n, log: log.With(zap.String("component", "notify")), timeout: defaultTimeout}
}

// Dispatch returns immediately. Failures are logged and counted only.
func (d *Dispatcher) Dispatch(msg Message) {
	if d == nil || d.n == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.n.Notify(ctx, msg); err != nil {
			monitoring.NotificationsTotal.WithLabelValues(string(msg.Kind), "error").Inc()
			d.log.Warn("⚠️ notification failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("to", msg.ToEmail),
				zap.Error(err))
			return
		}
		monitoring.NotificationsTotal.WithLabelValues(string(msg.Kind), "sent").Inc()
	}()
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
