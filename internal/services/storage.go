package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"cv-intake/internal/models"
)

// cvPrefix is the directory under the upload root where original CV files
// are kept. Stored paths are always relative to the upload root.
const cvPrefix = "cvs"

type StorageService interface {
	EnsureUploadDir() error
	SaveCV(file *multipart.FileHeader, kind models.FileKind) (string, error)
	AbsolutePath(relPath string) string
	Delete(relPath string) error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(filepath.Join(s.uploadPath, cvPrefix), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveCV writes the uploaded file under cvs/ with a collision-free name and
// returns its path relative to the upload root.
func (s *storageService) SaveCV(file *multipart.FileHeader, kind models.FileKind) (string, error) {
	relPath := path.Join(cvPrefix, fmt.Sprintf("%s.%s", uuid.New().String(), kind.Ext()))

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(s.AbsolutePath(relPath))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return relPath, nil
}

func (s *storageService) AbsolutePath(relPath string) string {
	return filepath.Join(s.uploadPath, filepath.FromSlash(relPath))
}

func (s *storageService) Delete(relPath string) error {
	if err := os.Remove(s.AbsolutePath(relPath)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
