package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
	dateLayout   = "2006-01-02"
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// extractAndValidateImage extracts and validates the image from the form
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("image: %w", err))
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("image size %d out of range", file.Size))
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("unsupported content type %q", contentType))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// parseBound parses a query time given as RFC 3339 or YYYY-MM-DD. A bare date
// used as an upper bound includes the whole day.
func parseBound(value, name string, upper bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.ErrValidationFailed.WithError(
			fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD, got %q", name, value))
	}
	if upper {
		d = d.AddDate(0, 0, 1)
	}
	return d, nil
}

// parseRange reads the from/to query parameters.
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := parseBound(c.Query("from"), "from", false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseBound(c.Query("to"), "to", true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseDate(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.ErrValidationFailed.WithError(fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, value))
	}
	return d, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("decode body: %w", err))
	}
	return nil
}

func employeeParam(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if err := domain.ValidateEmployeeID(id); err != nil {
		return "", domain.ErrValidationFailed.WithError(err)
	}
	return id, nil
}

// recordAudit logs an audited action with the caller taken from the token.
func recordAudit(c *fiber.Ctx, logger audit.Logger, event audit.Event, actionErr error) {
	if logger == nil {
		return
	}
	event.Actor, _ = middleware.GetSubject(c)
	if role, err := middleware.GetRole(c); err == nil {
		event.Role = string(role)
	}
	event.IPAddress = c.IP()
	if rid, ok := c.Locals("requestid").(string); ok {
		event.RequestID = rid
	}
	event.Success = actionErr == nil
	if actionErr != nil {
		var appErr *domain.AppError
		if errors.As(actionErr, &appErr) {
			event.Error = appErr.Code
		} else {
			event.Error = actionErr.Error()
		}
	}
	_ = logger.Log(c.Context(), event)
}
