package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/webhook"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

const EventAlertTriggered = "alert.triggered"

// Notifier fans alerts out to live dashboards and the configured webhook.
type Notifier struct {
	webhookService *webhook.Service
	hub            ws.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

func NewNotifier(webhookService *webhook.Service, hub ws.Publisher, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{
		webhookService: webhookService,
		hub:            hub,
		metrics:        m,
		logger:         logger,
	}
}

// Send delivers one alert on every channel. Hub delivery never fails; the
// webhook error is returned.
func (n *Notifier) Send(ctx context.Context, a Alert) error {
	if n.hub != nil {
		n.hub.Publish(ws.EventAlert, a)
		n.metrics.RecordNotification("ws", "sent")
	}

	if !n.webhookService.Enabled() {
		return nil
	}

	payload := webhook.EventPayload{
		Type:      EventAlertTriggered,
		Data:      a,
		Timestamp: a.TriggeredAt,
	}
	if err := n.webhookService.Send(ctx, payload); err != nil {
		n.metrics.RecordNotification("webhook", "failed")
		return fmt.Errorf("send webhook: %w", err)
	}
	n.metrics.RecordNotification("webhook", "sent")

	n.logger.Info("alert notification sent",
		"employee_id", a.EmployeeID,
		"kind", a.Kind,
		"severity", a.Severity,
	)
	return nil
}
