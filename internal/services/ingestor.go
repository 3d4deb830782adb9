package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"cv-intake/internal/models"
	"cv-intake/internal/repositories"
)

// IngestionService runs the full CV intake pipeline for one upload:
// validate → store file → extract text → sanitize → create record →
// score → merge results. Validation and storage failures abort with no
// side effects; a create failure deletes the stored file; scoring is
// best-effort and never rolls anything back.
type IngestionService interface {
	Ingest(ctx context.Context, req *models.UploadCandidateRequest, file *multipart.FileHeader) (*models.Candidate, error)
}

type ingestionService struct {
	repo        repositories.CandidateRepository
	storage     StorageService
	extractor   TextExtractor
	scorer      ScoringClient
	validate    *validator.Validate
	maxFileSize int64
}

func NewIngestionService(
	repo repositories.CandidateRepository,
	storage StorageService,
	extractor TextExtractor,
	scorer ScoringClient,
	maxFileSize int64,
) IngestionService {
	validate := validator.New()

	// Report errors under the multipart field names, not Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ingestionService{
		repo:        repo,
		storage:     storage,
		extractor:   extractor,
		scorer:      scorer,
		validate:    validate,
		maxFileSize: maxFileSize,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req *models.UploadCandidateRequest, file *multipart.FileHeader) (*models.Candidate, error) {
	// Step 1: validate. No side effects before this passes.
	kind, err := s.validateUpload(req, file)
	if err != nil {
		return nil, err
	}

	// Step 2: store the original file
	relPath, err := s.storage.SaveCV(file, kind)
	if err != nil {
		return nil, &models.StorageError{Err: err}
	}

	// Steps 3-4: extract and sanitize. Extraction failure degrades to an
	// empty cv_text, it never aborts the pipeline.
	cvText := s.extractor.ExtractText(s.storage.AbsolutePath(relPath), kind)
	if cvText != "" {
		cvText = SanitizeText(cvText)
		log.Printf("📄 CV text extracted and cleaned. Length: %d\n", len(cvText))
	} else {
		log.Printf("⚠️  No CV text extracted from file: %s\n", relPath)
	}

	// Step 5: create the record
	now := time.Now()
	candidate := &models.Candidate{
		ID:              uuid.New(),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		PositionApplied: req.PositionApplied,
		Skills:          req.Skills,
		YearsExperience: req.YearsExperience,
		EducationLevel:  req.EducationLevel,
		CVFilePath:      relPath,
		CVText:          cvText,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(candidate); err != nil {
		// Compensating action: no orphaned upload without a record
		if delErr := s.storage.Delete(relPath); delErr != nil {
			log.Printf("⚠️  Failed to clean up stored CV %s: %v\n", relPath, delErr)
		}
		return nil, &models.PersistenceError{Err: err}
	}

	// Step 6: score, best-effort. A failed scoring call leaves placeholder
	// values behind, the candidate record stays either way.
	result := s.scorer.Score(ctx, candidate)

	// Step 7: merge the outcome
	updated, err := s.repo.UpdateScoring(candidate.ID, result.Features, result.Score, result.Recommendation)
	if err != nil {
		return nil, &models.PersistenceError{Err: fmt.Errorf("failed to merge scoring result: %w", err)}
	}

	return updated, nil
}

func (s *ingestionService) validateUpload(req *models.UploadCandidateRequest, file *multipart.FileHeader) (models.FileKind, error) {
	fields := map[string]string{}

	if err := s.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ferr := range verrs {
				fields[ferr.Field()] = fieldMessage(ferr)
			}
		} else {
			fields["request"] = "invalid request"
		}
	}

	kind := models.FileKindUnsupported
	switch {
	case file == nil:
		fields["cv_file"] = "CV file is required."
	case file.Size < 1:
		fields["cv_file"] = "CV file is empty."
	case file.Size > s.maxFileSize:
		fields["cv_file"] = fmt.Sprintf("CV file too large. Max size: %d bytes.", s.maxFileSize)
	default:
		kind = models.FileKindFromFilename(file.Filename)
		if kind == models.FileKindUnsupported {
			fields["cv_file"] = "CV file must be a PDF, DOC, or DOCX document."
		}
	}

	if len(fields) > 0 {
		return models.FileKindUnsupported, &models.ValidationError{Fields: fields}
	}

	return kind, nil
}

func fieldMessage(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", ferr.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", ferr.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", ferr.Field(), ferr.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", ferr.Field(), ferr.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", ferr.Field(), ferr.Param())
	default:
		return fmt.Sprintf("%s is invalid.", ferr.Field())
	}
}
