package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// errorBody is the envelope of every failed response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fiberCodes names the framework errors a client can trigger.
var fiberCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusNotFound:              "ROUTE_NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	fiber.StatusUnsupportedMediaType:  "UNSUPPORTED_MEDIA_TYPE",
	fiber.StatusRequestTimeout:        "REQUEST_TIMEOUT",
}

// ErrorHandler renders domain and framework errors as JSON. Only 5xx
// answers are logged here; Logger records every request.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, detail := classify(err)
		if status >= fiber.StatusInternalServerError {
			attrs := []any{
				slog.String("code", detail.Code),
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			}
			if rid, ok := c.Locals("requestid").(string); ok {
				attrs = append(attrs, slog.String("request_id", rid))
			}
			logger.Error("request failed", attrs...)
		}
		return c.Status(status).JSON(errorBody{Error: detail})
	}
}

func classify(err error) (int, errorDetail) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, errorDetail{Code: appErr.Code, Message: appErr.Message}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code, ok := fiberCodes[fiberErr.Code]
		if !ok {
			code = "HTTP_ERROR"
		}
		return fiberErr.Code, errorDetail{Code: code, Message: fiberErr.Message}
	}

	return domain.ErrInternal.StatusCode, errorDetail{Code: domain.ErrInternal.Code, Message: domain.ErrInternal.Message}
}
