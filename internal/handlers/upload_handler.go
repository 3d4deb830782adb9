package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cv-intake/internal/models"
	"cv-intake/internal/services"
)

type UploadHandler struct {
	ingestor services.IngestionService
}

func NewUploadHandler(ingestor services.IngestionService) *UploadHandler {
	return &UploadHandler{
		ingestor: ingestor,
	}
}

// HandleUpload handles POST /candidates
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	var req models.UploadCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid form payload",
		})
	}

	// Missing files surface as a field-level validation error, not a parse
	// error, so the caller gets consistent messages.
	file, err := c.FormFile("cv_file")
	if err != nil {
		file = nil
	}

	candidate, err := h.ingestor.Ingest(c.UserContext(), &req, file)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Validation failed",
				"errors": vErr.Fields,
			})
		}

		var sErr *models.StorageError
		if errors.As(err, &sErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store CV file. Please try again.",
			})
		}

		var pErr *models.PersistenceError
		if errors.As(err, &pErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to process CV file. Please try again with a different file.",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process upload",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(candidate)
}
