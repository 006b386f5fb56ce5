package handler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/performance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

// PerformanceService records and lists performance reviews and aggregates
// them per department.
type PerformanceService interface {
	Record(ctx context.Context, in performance.RecordInput) (*domain.PerformanceRecord, error)
	List(ctx context.Context, filter repository.PerformanceFilter) ([]domain.PerformanceRecord, error)
	DepartmentStats(ctx context.Context, name string, from, to time.Time) (*performance.DepartmentStats, error)
}

type PerformanceHandler struct {
	service PerformanceService
	logger  *slog.Logger
}

func NewPerformanceHandler(service PerformanceService, logger *slog.Logger) *PerformanceHandler {
	return &PerformanceHandler{service: service, logger: logger}
}

// PerformanceRequest is one review. period is YYYY-MM-DD.
type PerformanceRequest struct {
	EmployeeID        string   `json:"employee_id"`
	Period            string   `json:"period"`
	TasksCompleted    int      `json:"tasks_completed"`
	QualityScore      float64  `json:"quality_score"`
	ProductivityScore *float64 `json:"productivity_score,omitempty"`
	Efficiency        *float64 `json:"efficiency,omitempty"`
	Comments          string   `json:"comments,omitempty"`
}

type PerformanceListResponse struct {
	Records []domain.PerformanceRecord `json:"records"`
	Total   int                        `json:"total"`
}

// Record POST /v1/performance
func (h *PerformanceHandler) Record(c *fiber.Ctx) error {
	var req PerformanceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	period, err := parseDate(req.Period, "period")
	if err != nil {
		return err
	}

	record, err := h.service.Record(c.Context(), performance.RecordInput{
		EmployeeID:        strings.TrimSpace(req.EmployeeID),
		Period:            period,
		TasksCompleted:    req.TasksCompleted,
		QualityScore:      req.QualityScore,
		ProductivityScore: req.ProductivityScore,
		Efficiency:        req.Efficiency,
		Comments:          req.Comments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// List GET /v1/performance?employee_id=&from=&to=
func (h *PerformanceHandler) List(c *fiber.Ctx) error {
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}

	records, err := h.service.List(c.Context(), repository.PerformanceFilter{
		EmployeeID: strings.TrimSpace(c.Query("employee_id")),
		From:       from,
		To:         to,
	})
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.PerformanceRecord{}
	}
	return c.JSON(PerformanceListResponse{Records: records, Total: len(records)})
}

// Department GET /v1/departments/:name/stats?from=&to=
func (h *PerformanceHandler) Department(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}

	stats, err := h.service.DepartmentStats(c.Context(), name, from, to)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
