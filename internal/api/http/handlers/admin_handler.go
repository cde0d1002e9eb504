package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-search-service/internal/repository"
)

// AdminHandler exposes dashboard data to administrators.
type AdminHandler struct {
	repo repository.JobBoardRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(repo repository.JobBoardRepository) *AdminHandler {
	return &AdminHandler{repo: repo}
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.repo.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
