package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
)

func levelFor(status int) slog.Level {
	switch {
	case status >= fiber.StatusInternalServerError:
		return slog.LevelError
	case status >= fiber.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Logger logs every request and records it in m, which may be nil.
func Logger(logger *slog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		began := time.Now()

		if err := c.Next(); err != nil {
			// Resolve the error here so the logged status matches the response.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		took := time.Since(began)
		code := c.Response().StatusCode()

		fields := make([]any, 0, 8)
		fields = append(fields,
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", code),
			slog.Duration("latency", took),
			slog.String("ip", c.IP()),
		)
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			fields = append(fields, slog.String("user_agent", ua))
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, slog.String("request_id", rid))
		}
		if subject, ok := c.Locals(LocalSubject).(string); ok {
			fields = append(fields, slog.String("subject", subject))
		}
		logger.Log(c.Context(), levelFor(code), "http request", fields...)

		m.RecordHTTPRequest(c.Method(), c.Route().Path, code, took)
		return nil
	}
}
