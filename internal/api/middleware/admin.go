package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/admin"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// RequireRole rejects requests whose token role does not satisfy required.
// It must be chained after Auth.
func RequireRole(required admin.Role, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := GetRole(c)
		if err != nil {
			logger.Debug("role check requires prior authentication", "path", c.Path())
			return err
		}

		if !role.Allows(required) {
			logger.Warn("insufficient privileges",
				"subject", c.Locals(LocalSubject),
				"role", role,
				"required", required,
				"path", c.Path(),
			)
			return domain.ErrForbidden
		}

		return c.Next()
	}
}

// IsAdmin checks if the current request carries an admin token
func IsAdmin(c *fiber.Ctx) bool {
	role, err := GetRole(c)
	return err == nil && role == admin.RoleAdmin
}
