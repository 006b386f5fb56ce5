package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
)

// Worker evaluates every employee on an interval and notifies about new
// alerts. The same (employee, kind) is re-notified only after the notify
// cooldown.
type Worker struct {
	service  *Service
	notifier *Notifier
	logger   *slog.Logger
	interval time.Duration
	notified *cache.Cache
	now      func() time.Time
}

func NewWorker(service *Service, notifier *Notifier, logger *slog.Logger, interval, notifyCooldown time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	if notifyCooldown <= 0 {
		notifyCooldown = cache.NoExpiration
	}
	return &Worker{
		service:  service,
		notifier: notifier,
		logger:   logger.With("component", "alert_worker"),
		interval: interval,
		// expired keys are checked on Get, so no janitor goroutine is needed
		notified: cache.New(notifyCooldown, 0),
		now:      time.Now,
	}
}

// Start runs one pass immediately, then one per interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("alert worker started", "interval", w.interval)
	defer w.logger.Info("alert worker stopped")

	tick := time.NewTicker(w.interval)
	defer tick.Stop()

	for {
		w.pass(ctx)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

// fresh drops alerts already notified inside the cooldown.
func (w *Worker) fresh(alerts []Alert) []Alert {
	out := alerts[:0:0]
	for _, a := range alerts {
		if _, seen := w.notified.Get(a.Key()); !seen {
			out = append(out, a)
		}
	}
	return out
}

func (w *Worker) pass(ctx context.Context) {
	alerts, err := w.service.EvaluateAll(ctx, w.now())
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to evaluate alerts", "error", err)
		}
		return
	}

	pending := w.fresh(alerts)
	for _, a := range pending {
		log := w.logger.With("employee_id", a.EmployeeID, "kind", a.Kind)
		log.Info("alert triggered", "severity", a.Severity, "detail", a.Detail)

		if err := w.notifier.Send(ctx, a); err != nil {
			log.Error("failed to send notification", "error", err)
		}
		// failed webhook deliveries are retried by the webhook queue
		w.notified.SetDefault(a.Key(), a.TriggeredAt)
	}

	w.logger.Debug("alert pass finished", "alerts", len(alerts), "notified", len(pending))
}
