package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cv-intake/internal/models"
)

// SearchPageSize is the fixed page size of the dashboard listing.
const SearchPageSize = 10

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	UpdateScoring(id uuid.UUID, features map[string]interface{}, score *float64, recommendation *string) (*models.Candidate, error)
	Search(query string, page int) ([]models.Candidate, int64, error)
	FindByRecommendation(recommendation string, limit int) ([]models.Candidate, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrCandidateNotFound
		}

		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}

	return &candidate, nil
}

// UpdateScoring writes the scoring outcome onto an existing candidate. It is
// the only mutation a candidate receives after creation.
func (r *candidateRepository) UpdateScoring(id uuid.UUID, features map[string]interface{}, score *float64, recommendation *string) (*models.Candidate, error) {
	updates := map[string]interface{}{
		"features":       datatypes.JSONMap(features),
		"score":          score,
		"recommendation": recommendation,
		"updated_at":     time.Now(),
	}

	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to update scoring: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, models.ErrCandidateNotFound
	}

	return r.FindByID(id)
}

// Search matches candidates whose name or position contains the query
// substring, case-insensitively. Results are ordered by score descending
// with unscored candidates last, then by id so pagination stays stable
// across ties. An empty query returns everyone.
func (r *candidateRepository) Search(query string, page int) ([]models.Candidate, int64, error) {
	if page < 1 {
		page = 1
	}

	db := r.db.Model(&models.Candidate{})

	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(position_applied) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	var candidates []models.Candidate
	err := db.
		Order("score DESC NULLS LAST, id ASC").
		Limit(SearchPageSize).
		Offset((page - 1) * SearchPageSize).
		Find(&candidates).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search candidates: %w", err)
	}

	return candidates, total, nil
}

// FindByRecommendation returns unscored candidates carrying the given
// placeholder recommendation, oldest first. Used by the rescore worker.
func (r *candidateRepository) FindByRecommendation(recommendation string, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("score IS NULL AND recommendation = ?", recommendation).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for rescoring: %w", err)
	}

	return candidates, nil
}
