package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cv-intake/internal/models"
)

// Bulk-uploads a directory of CV files to a running cv-intake server, one
// candidate per file. The candidate name is derived from the filename stem;
// position and other metadata come from flags.
func main() {
	var (
		dir      = flag.String("dir", "./cvs", "directory containing CV files (pdf/doc/docx)")
		server   = flag.String("server", "http://localhost:3000", "base URL of the cv-intake API")
		position = flag.String("position", "", "position_applied for every uploaded candidate (required)")
		skills   = flag.String("skills", "", "comma-separated skills applied to every candidate")
	)
	flag.Parse()

	if *position == "" {
		log.Fatal("❌ -position is required")
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("❌ Failed to read directory %s: %v", *dir, err)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	endpoint := strings.TrimRight(*server, "/") + "/api/v1/candidates"

	uploaded, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filePath := filepath.Join(*dir, entry.Name())
		if models.FileKindFromFilename(entry.Name()) == models.FileKindUnsupported {
			log.Printf("⚠️  Skipping unsupported file: %s\n", entry.Name())
			skipped++
			continue
		}

		if err := uploadCandidate(client, endpoint, filePath, *position, *skills); err != nil {
			log.Printf("❌ Failed to upload %s: %v\n", entry.Name(), err)
			skipped++
			continue
		}

		log.Printf("✅ Uploaded %s\n", entry.Name())
		uploaded++
	}

	log.Printf("🏁 Done: %d uploaded, %d skipped\n", uploaded, skipped)
}

func uploadCandidate(client *http.Client, endpoint, filePath, position, skills string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	name = strings.ReplaceAll(strings.ReplaceAll(name, "_", " "), "-", " ")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	_ = writer.WriteField("name", name)
	_ = writer.WriteField("position_applied", position)
	if skills != "" {
		_ = writer.WriteField("skills", skills)
	}

	part, err := writer.CreateFormFile("cv_file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	resp, err := client.Post(endpoint, writer.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, raw)
	}

	return nil
}
