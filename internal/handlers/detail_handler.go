package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cv-intake/internal/models"
	"cv-intake/internal/repositories"
)

type DetailHandler struct {
	repo repositories.CandidateRepository
}

func NewDetailHandler(repo repositories.CandidateRepository) *DetailHandler {
	return &DetailHandler{
		repo: repo,
	}
}

// HandleGetCandidate handles GET /candidates/:id
func (h *DetailHandler) HandleGetCandidate(c *fiber.Ctx) error {
	idParam := c.Params("id")
	candidateID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.repo.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, models.ErrCandidateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load candidate",
		})
	}

	return c.JSON(candidate)
}
