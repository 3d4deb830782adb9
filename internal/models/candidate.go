package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FileKind identifies the document format of an uploaded CV. It is resolved
// once during upload validation and passed explicitly to the extractor, so
// no later stage re-inspects the filename.
type FileKind int

const (
	FileKindUnsupported FileKind = iota
	FileKindPDF
	FileKindDOC
	FileKindDOCX
)

func FileKindFromFilename(filename string) FileKind {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return FileKindPDF
	case "doc":
		return FileKindDOC
	case "docx":
		return FileKindDOCX
	default:
		return FileKindUnsupported
	}
}

// Ext returns the canonical lower-case file extension without the dot.
func (k FileKind) Ext() string {
	switch k {
	case FileKindPDF:
		return "pdf"
	case FileKindDOC:
		return "doc"
	case FileKindDOCX:
		return "docx"
	default:
		return ""
	}
}

func (k FileKind) String() string {
	if k == FileKindUnsupported {
		return "unsupported"
	}
	return k.Ext()
}

type Candidate struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Name            string            `gorm:"type:varchar(255);not null" json:"name"`
	Email           string            `gorm:"type:varchar(255)" json:"email"`
	Phone           string            `gorm:"type:varchar(50)" json:"phone"`
	PositionApplied string            `gorm:"type:varchar(255);not null" json:"position_applied"`
	Skills          string            `gorm:"type:text" json:"skills"`
	YearsExperience int               `gorm:"not null;default:0" json:"years_experience"`
	EducationLevel  string            `gorm:"type:varchar(255)" json:"education_level"`
	CVFilePath      string            `gorm:"type:text;not null" json:"cv_file_path"`
	CVText          string            `gorm:"type:text" json:"cv_text"`
	Features        datatypes.JSONMap `json:"features,omitempty"`
	Score           *float64          `json:"score"`
	Recommendation  *string           `gorm:"type:varchar(255)" json:"recommendation"`
	CreatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}
