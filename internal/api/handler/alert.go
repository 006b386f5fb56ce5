package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/alert"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

// AlertService evaluates alerts and owns the thresholds.
type AlertService interface {
	EvaluateAll(ctx context.Context, now time.Time) ([]alert.Alert, error)
	EvaluateEmployee(ctx context.Context, employeeID string, now time.Time) ([]alert.Alert, error)
	Thresholds() alert.Thresholds
	UpdateThresholds(t alert.Thresholds) error
}

// AlertHandler serves the current alerts and the threshold configuration
type AlertHandler struct {
	service AlertService
	hub     ws.Publisher
	audit   audit.Logger
	logger  *slog.Logger
	now     func() time.Time
}

func NewAlertHandler(service AlertService, hub ws.Publisher, auditLogger audit.Logger, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		hub:     hub,
		audit:   auditLogger,
		logger:  logger,
		now:     time.Now,
	}
}

type AlertListResponse struct {
	Alerts      []alert.Alert    `json:"alerts"`
	Total       int              `json:"total"`
	Thresholds  alert.Thresholds `json:"thresholds"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// List GET /v1/alerts?employee_id=&kind=&severity=
// With employee_id only that employee is evaluated; an unknown id is a 404.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	now := h.now().UTC()

	var (
		alerts []alert.Alert
		err    error
	)
	if employeeID := c.Query("employee_id"); employeeID != "" {
		alerts, err = h.service.EvaluateEmployee(c.Context(), employeeID, now)
	} else {
		alerts, err = h.service.EvaluateAll(c.Context(), now)
	}
	if err != nil {
		return err
	}

	kind := alert.Kind(c.Query("kind"))
	severity := alert.Severity(c.Query("severity"))

	filtered := make([]alert.Alert, 0, len(alerts))
	for _, a := range alerts {
		if kind != "" && a.Kind != kind {
			continue
		}
		if severity != "" && a.Severity != severity {
			continue
		}
		filtered = append(filtered, a)
	}

	return c.JSON(AlertListResponse{
		Alerts:      filtered,
		Total:       len(filtered),
		Thresholds:  h.service.Thresholds(),
		EvaluatedAt: now,
	})
}

// Export GET /v1/alerts/export - CSV of the current evaluation
func (h *AlertHandler) Export(c *fiber.Ctx) error {
	now := h.now().UTC()
	alerts, err := h.service.EvaluateAll(c.Context(), now)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := alert.WriteCSV(&buf, alerts); err != nil {
		return domain.ErrInternal.WithError(fmt.Errorf("export alerts: %w", err))
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="alerts-%s.csv"`, now.Format("20060102-150405")))
	return c.Send(buf.Bytes())
}

// GetConfig GET /v1/alerts/config
func (h *AlertHandler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(h.service.Thresholds())
}

// UpdateConfig PUT /v1/alerts/config - replaces the thresholds used by later
// evaluations. Omitted fields keep their current value.
func (h *AlertHandler) UpdateConfig(c *fiber.Ctx) error {
	next := h.service.Thresholds()
	if err := parseBody(c, &next); err != nil {
		return err
	}

	err := h.service.UpdateThresholds(next)
	recordAudit(c, h.audit, audit.Event{
		Action: audit.ActionThresholdsUpdated,
		Metadata: map[string]string{
			"attendance_pct_threshold":    strconv.FormatFloat(next.AttendancePct, 'f', -1, 64),
			"performance_score_threshold": strconv.FormatFloat(next.PerformanceScore, 'f', -1, 64),
			"inactivity_days_threshold":   strconv.Itoa(next.InactivityDays),
			"window_days":                 strconv.Itoa(next.WindowDays),
			"score_source":                string(next.ScoreSource),
		},
	}, err)
	if err != nil {
		return err
	}

	current := h.service.Thresholds()
	if h.hub != nil {
		h.hub.Publish(ws.EventThresholdsUpdated, current)
	}
	return c.JSON(current)
}
