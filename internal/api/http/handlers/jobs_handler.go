package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/repository"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// JobsHandler serves the public job list.
type JobsHandler struct {
	repo repository.JobBoardRepository
}

// NewJobsHandler constructs handler.
func NewJobsHandler(repo repository.JobBoardRepository) *JobsHandler {
	return &JobsHandler{repo: repo}
}

// List handles GET /jobs?q=&status=.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	filter := repository.JobFilter{Query: c.Query("q")}
	if raw := strings.ToLower(c.Query("status")); raw != "" {
		status := domain.JobStatus(raw)
		if status != domain.JobStatusActive && status != domain.JobStatusClosed {
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Status = status
	}

	jobs, err := h.repo.SearchJobs(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobs})
}

// Get handles GET /jobs/:id.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	job, err := h.repo.GetJobByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": job})
}
