package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// Recover turns a handler panic into an INTERNAL_ERROR response.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			subject, _ := c.Locals(LocalSubject).(string)
			logger.Error("handler panicked",
				slog.String("route", c.Method()+" "+c.Path()),
				slog.String("subject", subject),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = domain.ErrInternal.WithError(fmt.Errorf("panic: %v", r))
		}()
		return c.Next()
	}
}
