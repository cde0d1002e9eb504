package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/job-search-service/internal/api/dto"
	"github.com/spec-kit/job-search-service/internal/auth"
	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/state"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// AuthHandler opens and closes sessions.
type AuthHandler struct {
	registry *state.Registry
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(registry *state.Registry, tokens *auth.TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{registry: registry, tokens: tokens, logger: logger}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	h.registry.Sweep()
	st := h.registry.Open(c.UserContext())
	if _, err := st.Register(c.UserContext(), req.ToNewUser()); err != nil {
		h.registry.Close(st.ID())
		return err
	}

	return h.respondWithSession(c, http.StatusCreated, st)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	h.registry.Sweep()
	st := h.registry.Open(c.UserContext())
	ok, err := st.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.registry.Close(st.ID())
		return err
	}
	if !ok {
		h.registry.Close(st.ID())
		return apperrors.NewInvalidCredentials()
	}

	return h.respondWithSession(c, http.StatusOK, st)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	h.registry.Close(principal.SessionID)
	return c.SendStatus(http.StatusNoContent)
}

func (h *AuthHandler) respondWithSession(c *fiber.Ctx, status int, st *state.AppState) error {
	user, ok := st.CurrentUser()
	if !ok {
		h.registry.Close(st.ID())
		return apperrors.NewInternalError(nil)
	}

	token, exp, err := h.tokens.GenerateToken(st.ID(), user.ID, user.Role)
	if err != nil {
		h.registry.Close(st.ID())
		return apperrors.NewInternalError(err)
	}

	h.logger.Info("session opened", zap.String("session_id", st.ID()), zap.String("user_id", user.ID))
	return c.Status(status).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, SessionID: st.ID(), ExpiresAt: exp},
		},
	})
}

func userData(u *domain.User) fiber.Map {
	return fiber.Map{"data": dto.NewUserResponse(u)}
}
