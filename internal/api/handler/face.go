package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// FaceService enrolls and removes employee faces.
type FaceService interface {
	Enroll(ctx context.Context, employeeID string, embedding []float64) (*domain.EmployeeFaceRecord, error)
	EnrollImage(ctx context.Context, employeeID string, imageBytes []byte) (*domain.EmployeeFaceRecord, error)
	Remove(ctx context.Context, employeeID string) error
}

// FaceHandler handles face enrollment
type FaceHandler struct {
	service FaceService
	audit   audit.Logger
	logger  *slog.Logger
}

// NewFaceHandler creates a new FaceHandler instance
func NewFaceHandler(service FaceService, auditLogger audit.Logger, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		service: service,
		audit:   auditLogger,
		logger:  logger,
	}
}

// EnrollRequest carries a precomputed embedding.
type EnrollRequest struct {
	Embedding []float64 `json:"embedding"`
}

// EnrollResponse response for the enroll endpoint
type EnrollResponse struct {
	EmployeeID   string `json:"employee_id"`
	Dimension    int    `json:"dimension"`
	RegisteredAt string `json:"registered_at"`
}

// Enroll PUT /v1/employees/:id/face - JSON embedding or multipart image.
// A previous face of the employee is replaced.
func (h *FaceHandler) Enroll(c *fiber.Ctx) error {
	id, err := employeeParam(c)
	if err != nil {
		return err
	}

	var (
		record *domain.EmployeeFaceRecord
		source string
	)
	if isMultipart(c) {
		source = "image"
		imageBytes, err := extractAndValidateImage(c)
		if err != nil {
			return err
		}
		record, err = h.service.EnrollImage(c.Context(), id, imageBytes)
		if err != nil {
			recordAudit(c, h.audit, audit.Event{Action: audit.ActionFaceEnrolled, EmployeeID: id}, err)
			return err
		}
	} else {
		source = "embedding"
		var req EnrollRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		record, err = h.service.Enroll(c.Context(), id, req.Embedding)
		if err != nil {
			recordAudit(c, h.audit, audit.Event{Action: audit.ActionFaceEnrolled, EmployeeID: id}, err)
			return err
		}
	}

	recordAudit(c, h.audit, audit.Event{
		Action:     audit.ActionFaceEnrolled,
		EmployeeID: id,
		Metadata: map[string]string{
			"source":    source,
			"dimension": strconv.Itoa(record.Dimension()),
		},
	}, nil)

	return c.JSON(EnrollResponse{
		EmployeeID:   record.EmployeeID,
		Dimension:    record.Dimension(),
		RegisteredAt: record.RegisteredAt.UTC().Format(time.RFC3339),
	})
}

// Remove DELETE /v1/employees/:id/face
func (h *FaceHandler) Remove(c *fiber.Ctx) error {
	id, err := employeeParam(c)
	if err != nil {
		return err
	}

	err = h.service.Remove(c.Context(), id)
	recordAudit(c, h.audit, audit.Event{Action: audit.ActionFaceRemoved, EmployeeID: id}, err)
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
