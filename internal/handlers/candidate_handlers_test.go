package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cv-intake/internal/models"
	"cv-intake/internal/repositories"
	"cv-intake/internal/services"
)

type testEnv struct {
	app  *fiber.App
	repo repositories.CandidateRepository
}

func newTestEnv(t *testing.T, scoringURL string) *testEnv {
	t.Helper()

	// Named shared-cache DB so every pooled connection sees the same tables
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Candidate{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := repositories.NewCandidateRepository(db)

	storage := services.NewStorageService(t.TempDir())
	if err := storage.EnsureUploadDir(); err != nil {
		t.Fatal(err)
	}

	ingestor := services.NewIngestionService(
		repo,
		storage,
		services.NewTextExtractor(),
		services.NewScoringClient(scoringURL, 5*time.Second),
		5242880,
	)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/candidates", NewUploadHandler(ingestor).HandleUpload)
	api.Get("/candidates", NewListHandler(repo).HandleList)
	api.Get("/candidates/:id", NewDetailHandler(repo).HandleGetCandidate)

	return &testEnv{app: app, repo: repo}
}

func buildUpload(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if filename != "" {
		part, err := writer.CreateFormFile("cv_file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// minimalDocx returns DOCX bytes with one paragraph of the given text.
func minimalDocx(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	ct, err := zw.Create("[Content_Types].xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))

	doc, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = doc.Write([]byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body></w:document>`, text)))

	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeCandidate(t *testing.T, resp *http.Response) models.Candidate {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var c models.Candidate
	if err := json.Unmarshal(body, &c); err != nil {
		t.Fatalf("failed to decode candidate: %v\nbody: %s", err, body)
	}
	return c
}

func TestUploadEndToEnd(t *testing.T) {
	scoring := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "Seasoned Go developer") {
			t.Errorf("expected extracted cv_text in scoring payload, got: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score": 85.5, "recommendation": "Strong fit", "features": {"kw_density": 0.3}}`))
	}))
	defer scoring.Close()

	env := newTestEnv(t, scoring.URL)

	req := buildUpload(t, map[string]string{
		"name":             "Jane Doe",
		"email":            "jane@example.com",
		"position_applied": "Backend Engineer",
		"skills":           "go,sql",
		"years_experience": "5",
	}, "cv.docx", minimalDocx(t, "Seasoned Go developer with strong SQL skills"))

	resp, err := env.app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	candidate := decodeCandidate(t, resp)
	if candidate.Score == nil || *candidate.Score != 85.5 {
		t.Errorf("expected score 85.5, got %v", candidate.Score)
	}
	if candidate.Recommendation == nil || *candidate.Recommendation != "Strong fit" {
		t.Errorf("expected recommendation Strong fit, got %v", candidate.Recommendation)
	}
	if !strings.Contains(candidate.CVText, "Seasoned Go developer") {
		t.Errorf("expected extracted text in cv_text, got %q", candidate.CVText)
	}

	// The record is readable back through the detail endpoint
	detailReq := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/"+candidate.ID.String(), nil)
	detailResp, err := env.app.Test(detailReq)
	if err != nil {
		t.Fatal(err)
	}
	if detailResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from detail endpoint, got %d", detailResp.StatusCode)
	}
}

func TestUploadValidationErrors(t *testing.T) {
	env := newTestEnv(t, "http://localhost:0")

	// Missing name and file
	req := buildUpload(t, map[string]string{
		"position_applied": "Backend Engineer",
	}, "", nil)

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if _, ok := parsed.Errors["name"]; !ok {
		t.Errorf("expected field error for name, got %v", parsed.Errors)
	}
	if _, ok := parsed.Errors["cv_file"]; !ok {
		t.Errorf("expected field error for cv_file, got %v", parsed.Errors)
	}
}

func TestUploadUnsupportedFileType(t *testing.T) {
	env := newTestEnv(t, "http://localhost:0")

	req := buildUpload(t, map[string]string{
		"name":             "Jane Doe",
		"position_applied": "Backend Engineer",
	}, "cv.exe", []byte("MZ"))

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListAndSearch(t *testing.T) {
	env := newTestEnv(t, "http://localhost:0")

	seed := []struct {
		name     string
		position string
		score    *float64
	}{
		{"Alice Smith", "Software Engineer", ptrFloat(90)},
		{"Bob Brown", "Data Engineer", ptrFloat(70)},
		{"Carol White", "Designer", nil},
	}
	for _, s := range seed {
		c := &models.Candidate{
			ID:              uuid.New(),
			Name:            s.name,
			PositionApplied: s.position,
			CVFilePath:      "cvs/" + uuid.New().String() + ".pdf",
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := env.repo.Create(c); err != nil {
			t.Fatal(err)
		}
		if s.score != nil {
			rec := "ok"
			if _, err := env.repo.UpdateScoring(c.ID, map[string]interface{}{}, s.score, &rec); err != nil {
				t.Fatal(err)
			}
		}
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidates?q=engineer", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var parsed models.CandidateListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}

	if parsed.Total != 2 || len(parsed.Items) != 2 {
		t.Fatalf("expected 2 engineer matches, got total=%d len=%d", parsed.Total, len(parsed.Items))
	}
	if parsed.Items[0].Name != "Alice Smith" {
		t.Errorf("expected highest score first, got %s", parsed.Items[0].Name)
	}
	if parsed.PerPage != repositories.SearchPageSize {
		t.Errorf("expected per_page %d, got %d", repositories.SearchPageSize, parsed.PerPage)
	}
}

func TestDetailNotFound(t *testing.T) {
	env := newTestEnv(t, "http://localhost:0")

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidates/"+uuid.New().String(), nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDetailBadID(t *testing.T) {
	env := newTestEnv(t, "http://localhost:0")

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidates/not-a-uuid", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func ptrFloat(v float64) *float64 { return &v }
