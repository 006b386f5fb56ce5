package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/admin"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

const (
	// LocalSubject is the key to retrieve the token subject from context
	LocalSubject = "subject"
	// LocalRole is the key to retrieve the token role from context
	LocalRole = "role"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*admin.Claims, error)
}

// AuthDependencies contains dependencies for authentication
type AuthDependencies struct {
	Tokens TokenValidator
	Logger *slog.Logger
}

// Auth creates an authentication middleware using JWT bearer tokens
func Auth(deps AuthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			deps.Logger.Debug("missing bearer token", "path", c.Path())
			return domain.ErrUnauthorized
		}

		claims, err := deps.Tokens.ValidateToken(token)
		if err != nil {
			deps.Logger.Warn("invalid JWT token", "error", err, "path", c.Path())
			return domain.ErrUnauthorized
		}

		c.Locals(LocalSubject, claims.Subject)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header. Browsers cannot
// set headers on a websocket upgrade, so access_token is accepted there.
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		if strings.EqualFold(c.Get("Upgrade"), "websocket") {
			return c.Query("access_token")
		}
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetSubject retrieves the authenticated subject from Fiber context
func GetSubject(c *fiber.Ctx) (string, error) {
	subject, ok := c.Locals(LocalSubject).(string)
	if !ok || subject == "" {
		return "", domain.ErrUnauthorized
	}
	return subject, nil
}

// GetRole retrieves the authenticated role from Fiber context
func GetRole(c *fiber.Ctx) (admin.Role, error) {
	role, ok := c.Locals(LocalRole).(admin.Role)
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return role, nil
}
