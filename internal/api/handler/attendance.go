package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/attendance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

// AttendanceService records and lists check-ins.
type AttendanceService interface {
	CheckInManual(ctx context.Context, employeeID string, at time.Time) (attendance.Outcome, error)
	CheckInSamples(ctx context.Context, samples []domain.DetectionSample) ([]attendance.Outcome, error)
	CheckInImage(ctx context.Context, image []byte) ([]attendance.Outcome, error)
	List(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceEvent, error)
}

// AttendanceHandler handles check-ins
type AttendanceHandler struct {
	service AttendanceService
	audit   audit.Logger
	logger  *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, auditLogger audit.Logger, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		audit:   auditLogger,
		logger:  logger,
	}
}

// ManualCheckInRequest records a check-in without a face. A missing
// timestamp means now.
type ManualCheckInRequest struct {
	EmployeeID string     `json:"employee_id"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// MatchRequest carries one embedding per face detected in a frame.
type MatchRequest struct {
	Embeddings [][]float64 `json:"embeddings"`
	CapturedAt *time.Time  `json:"captured_at,omitempty"`
}

// CheckInResponse lists the outcome of every face of a frame.
type CheckInResponse struct {
	Outcomes []attendance.Outcome `json:"outcomes"`
	Recorded int                  `json:"recorded"`
}

type AttendanceListResponse struct {
	Events []domain.AttendanceEvent `json:"events"`
	Total  int                      `json:"total"`
}

func outcomeStatus(out attendance.Outcome) int {
	if out.Status == attendance.StatusRecorded {
		return fiber.StatusCreated
	}
	return fiber.StatusOK
}

func checkInResponse(outcomes []attendance.Outcome) (int, CheckInResponse) {
	resp := CheckInResponse{Outcomes: outcomes}
	status := fiber.StatusOK
	for _, out := range outcomes {
		if out.Status == attendance.StatusRecorded {
			resp.Recorded++
			status = fiber.StatusCreated
		}
	}
	return status, resp
}

// Manual POST /v1/attendance/manual
func (h *AttendanceHandler) Manual(c *fiber.Ctx) error {
	var req ManualCheckInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)

	var at time.Time
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	out, err := h.service.CheckInManual(c.Context(), req.EmployeeID, at)
	if err != nil {
		recordAudit(c, h.audit, audit.Event{Action: audit.ActionManualCheckIn, EmployeeID: req.EmployeeID}, err)
		return err
	}
	recordAudit(c, h.audit, audit.Event{
		Action:     audit.ActionManualCheckIn,
		EmployeeID: req.EmployeeID,
		Metadata:   map[string]string{"status": string(out.Status)},
	}, nil)

	return c.Status(outcomeStatus(out)).JSON(out)
}

// Match POST /v1/attendance/match - embeddings computed by an edge detector
func (h *AttendanceHandler) Match(c *fiber.Ctx) error {
	var req MatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	capturedAt := time.Now().UTC()
	if req.CapturedAt != nil {
		capturedAt = req.CapturedAt.UTC()
	}
	samples := make([]domain.DetectionSample, 0, len(req.Embeddings))
	for _, e := range req.Embeddings {
		samples = append(samples, domain.DetectionSample{Embedding: e, CapturedAt: capturedAt})
	}

	outcomes, err := h.service.CheckInSamples(c.Context(), samples)
	if err != nil {
		return err
	}
	status, resp := checkInResponse(outcomes)
	return c.Status(status).JSON(resp)
}

// Image POST /v1/attendance/image - multipart image, every face is checked in
func (h *AttendanceHandler) Image(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	outcomes, err := h.service.CheckInImage(c.Context(), imageBytes)
	if err != nil {
		if errors.Is(err, domain.ErrNoFaceDetected) {
			h.logger.Debug("image check-in without faces", "size", len(imageBytes))
		}
		return err
	}
	status, resp := checkInResponse(outcomes)
	return c.Status(status).JSON(resp)
}

// List GET /v1/attendance?employee_id=&from=&to=
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}
	filter := repository.AttendanceFilter{
		EmployeeID: strings.TrimSpace(c.Query("employee_id")),
		From:       from,
		To:         to,
	}

	events, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.AttendanceEvent{}
	}
	return c.JSON(AttendanceListResponse{Events: events, Total: len(events)})
}
