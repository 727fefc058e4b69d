package media

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// MaxUploadSize caps a single upload at 5 MiB.
const MaxUploadSize = 5 << 20

var allowedTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// Storage writes uploaded files to a directory on disk. Filenames are
// replaced with random identifiers so uploads can never collide or
// traverse outside the directory.
type Storage struct {
	dir string
}

// NewStorage ensures the upload directory exists.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Save stores the upload and returns the stored filename. The declared
// content type must be an image type and the reader is hard-capped at
// MaxUploadSize.
func (s *Storage) Save(filename, contentType string, r io.Reader) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable content type", shared.ErrValidation)
	}
	if _, ok := allowedTypes[mediaType]; !ok {
		return "", fmt.Errorf("%w: only image uploads are allowed, got %s", shared.ErrValidation, mediaType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > MaxUploadSize {
		os.Remove(dst.Name())
		return "", fmt.Errorf("%w: upload exceeds %d bytes", shared.ErrValidation, MaxUploadSize)
	}
	return name, nil
}

// Remove deletes a stored file by name.
func (s *Storage) Remove(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("%w: invalid file name", shared.ErrValidation)
	}
	return os.Remove(filepath.Join(s.dir, name))
}

// Dir returns the directory uploads are stored in.
func (s *Storage) Dir() string {
	return s.dir
}
