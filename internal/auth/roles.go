package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-search-service/internal/domain"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// RoleLookup resolves the current role for a session; roles can change after login.
type RoleLookup func(sessionID string) (string, bool)

// RequireAdmin ensures the caller's session belongs to an admin.
func RequireAdmin(lookup RoleLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		role, ok := lookup(principal.SessionID)
		if !ok || role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireSession ensures the caller is authenticated.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
