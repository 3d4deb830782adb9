package services

import (
	"fmt"
	"log"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"cv-intake/internal/models"
)

type TextExtractor interface {
	ExtractText(filePath string, kind models.FileKind) string
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// ExtractText pulls plain text out of a stored CV file. It never fails:
// corrupt, password-protected, or otherwise unreadable documents degrade to
// an empty string so the ingestion pipeline can continue without text.
func (e *textExtractor) ExtractText(filePath string, kind models.FileKind) string {
	switch kind {
	case models.FileKindPDF:
		text, err := extractPDF(filePath)
		if err != nil {
			log.Printf("⚠️  PDF text extraction failed for %s: %v\n", filePath, err)
			return ""
		}
		return text
	case models.FileKindDOC, models.FileKindDOCX:
		text, err := extractWord(filePath)
		if err != nil {
			log.Printf("⚠️  Word text extraction failed for %s: %v\n", filePath, err)
			return ""
		}
		return text
	default:
		// Upload validation only admits pdf/doc/docx, so this is unreachable
		// in normal operation.
		return ""
	}
}

func extractPDF(filePath string) (text string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return strings.TrimSpace(textBuilder.String()), nil
}

func extractWord(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("word parser panicked: %v", r)
		}
	}()

	res, err := docconv.ConvertPath(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to convert document: %w", err)
	}

	return strings.TrimSpace(res.Body), nil
}
