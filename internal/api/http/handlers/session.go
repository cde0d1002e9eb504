package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-search-service/internal/auth"
	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/state"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// currentSession resolves the caller's session cache and logged-in user.
func currentSession(c *fiber.Ctx, registry *state.Registry) (*state.AppState, *domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	st, ok := registry.Get(principal.SessionID)
	if !ok {
		return nil, nil, apperrors.NewUnauthorized("session expired")
	}
	user, ok := st.CurrentUser()
	if !ok {
		return nil, nil, apperrors.NewUnauthorized("session logged out")
	}
	return st, user, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
