package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-search-service/internal/api/dto"
	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/repository"
	"github.com/spec-kit/job-search-service/internal/state"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// AccountHandler serves the logged-in user's profile, saved jobs and applications.
type AccountHandler struct {
	registry *state.Registry
	repo     repository.JobBoardRepository
}

// NewAccountHandler constructs handler.
func NewAccountHandler(registry *state.Registry, repo repository.JobBoardRepository) *AccountHandler {
	return &AccountHandler{registry: registry, repo: repo}
}

// Me handles GET /me. With ?wait=true it blocks until the user's links are loaded.
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	st, _, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}
	if c.QueryBool("wait") {
		if err := st.WaitUserData(c.UserContext()); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(st.Snapshot())})
}

// UpdateProfile handles PATCH /me.
func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	st, user, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}

	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if req.GrantsAdmin() && !user.IsAdmin() {
		return apperrors.NewForbidden("admin role cannot be self-assigned")
	}

	updated, err := st.UpdateUser(c.UserContext(), user.ID, req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(userData(updated))
}

// ChangePassword handles POST /me/password.
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	st, user, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}

	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	patch := domain.UserPatch{CurrentPassword: req.CurrentPassword, NewPassword: req.NewPassword}
	if _, err := st.UpdateUser(c.UserContext(), user.ID, patch); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete handles DELETE /me. Every session of the user is closed afterwards.
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	st, user, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}

	var req dto.AccountDeleteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := st.DeleteUser(c.UserContext(), user.ID, req.Password); err != nil {
		return err
	}
	h.registry.CloseUser(user.ID)
	h.registry.Close(st.ID())
	return c.SendStatus(http.StatusNoContent)
}

// SavedJobs handles GET /me/saved and returns the saved job postings.
func (h *AccountHandler) SavedJobs(c *fiber.Ctx) error {
	st, _, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}
	if err := st.WaitUserData(c.UserContext()); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": st.SavedJobDetails()})
}

// SaveJob handles POST /me/saved/:jobId.
func (h *AccountHandler) SaveJob(c *fiber.Ctx) error {
	st, user, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}

	jobID := c.Params("jobId")
	if _, err := h.repo.GetJobByID(c.UserContext(), jobID); err != nil {
		return err
	}

	inserted, err := st.SaveJob(c.UserContext(), user.ID, jobID)
	if err != nil {
		return err
	}
	return c.Status(linkStatus(inserted)).JSON(fiber.Map{
		"data": dto.LinkResponse{JobID: jobID, Inserted: inserted},
	})
}

// AppliedJobs handles GET /me/applied?status=.
func (h *AccountHandler) AppliedJobs(c *fiber.Ctx) error {
	st, _, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}

	status := domain.ApplicationStatus(strings.ToLower(c.Query("status")))
	if status != "" && !status.Valid() {
		return apperrors.NewValidationError("invalid status filter", map[string]any{"status": string(status)})
	}

	if err := st.WaitUserData(c.UserContext()); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": st.AppliedJobsByStatus(status)})
}

// Apply handles POST /me/applied/:jobId.
func (h *AccountHandler) Apply(c *fiber.Ctx) error {
	st, user, err := currentSession(c, h.registry)
	if err != nil {
		return err
	}

	jobID := c.Params("jobId")
	if _, err := h.repo.GetJobByID(c.UserContext(), jobID); err != nil {
		return err
	}

	inserted, err := st.ApplyForJob(c.UserContext(), user.ID, jobID)
	if err != nil {
		return err
	}
	return c.Status(linkStatus(inserted)).JSON(fiber.Map{
		"data": dto.LinkResponse{JobID: jobID, Inserted: inserted},
	})
}

func linkStatus(inserted bool) int {
	if inserted {
		return http.StatusCreated
	}
	return http.StatusOK
}
