package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cv-intake/internal/models"
	"cv-intake/internal/repositories"
)

type ListHandler struct {
	repo repositories.CandidateRepository
}

func NewListHandler(repo repositories.CandidateRepository) *ListHandler {
	return &ListHandler{
		repo: repo,
	}
}

// HandleList handles GET /candidates. Optional "q" filters by name or
// position, "page" selects the page; results come back sorted by score
// descending with unscored candidates last.
func (h *ListHandler) HandleList(c *fiber.Ctx) error {
	query := c.Query("q")
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	candidates, total, err := h.repo.Search(query, page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list candidates",
		})
	}

	if candidates == nil {
		candidates = []models.Candidate{}
	}

	return c.JSON(models.CandidateListResponse{
		Items:   candidates,
		Total:   total,
		Page:    page,
		PerPage: repositories.SearchPageSize,
	})
}
