package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"cv-intake/internal/models"
)

// Recommendation placeholders stored when scoring does not produce a result.
// The dashboard shows them so a reviewer can see why a candidate has no score.
const (
	RecommendationServiceUnavailable = "ML service unavailable"
	RecommendationInvalidResponse    = "Invalid response from ML service"
)

// ScoringResult is what the pipeline merges back into the candidate record.
// On failure Features is an empty map, Score stays nil, and Recommendation
// carries a placeholder.
type ScoringResult struct {
	Features       map[string]interface{}
	Score          *float64
	Recommendation *string
}

type ScoringClient interface {
	Score(ctx context.Context, candidate *models.Candidate) ScoringResult
}

type scoringClient struct {
	baseURL string
	client  *http.Client
}

func NewScoringClient(baseURL string, timeout time.Duration) ScoringClient {
	return &scoringClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type scoringRequest struct {
	Name            string `json:"name"`
	PositionApplied string `json:"position_applied"`
	Skills          string `json:"skills"`
	YearsExperience int    `json:"years_experience"`
	EducationLevel  string `json:"education_level"`
	CVText          string `json:"cv_text"`
}

type scoringResponse struct {
	Features       map[string]interface{} `json:"features"`
	Score          *float64               `json:"score"`
	Recommendation *string                `json:"recommendation"`
}

// Score sends the candidate's normalized fields to the external scoring
// service. A single attempt is made per call; any transport failure, non-2xx
// status, or undecodable body maps to a placeholder result rather than an
// error, so scoring never fails an ingestion.
func (s *scoringClient) Score(ctx context.Context, candidate *models.Candidate) ScoringResult {
	payload := scoringRequest{
		Name:            candidate.Name,
		PositionApplied: candidate.PositionApplied,
		Skills:          candidate.Skills,
		YearsExperience: candidate.YearsExperience,
		EducationLevel:  candidate.EducationLevel,
		CVText:          candidate.CVText,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to encode scoring payload: %v\n", err)
		return failureResult(RecommendationServiceUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️  Failed to build scoring request: %v\n", err)
		return failureResult(RecommendationServiceUnavailable)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️  ML scoring request failed: %v\n", err)
		return failureResult(RecommendationServiceUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("⚠️  Failed to read ML service response: %v\n", err)
		return failureResult(RecommendationServiceUnavailable)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Printf("⚠️  ML service returned status %d: %s\n", resp.StatusCode, raw)
		return failureResult(RecommendationServiceUnavailable)
	}

	var parsed scoringResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("⚠️  Failed to decode ML service response: %v\n", err)
		return failureResult(RecommendationInvalidResponse)
	}

	features := parsed.Features
	if features == nil {
		features = map[string]interface{}{}
	}

	return ScoringResult{
		Features:       features,
		Score:          parsed.Score,
		Recommendation: parsed.Recommendation,
	}
}

func failureResult(reason string) ScoringResult {
	return ScoringResult{
		Features:       map[string]interface{}{},
		Recommendation: &reason,
	}
}
