// AngelaMos | 2026
// store.go

package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/carterperez-dev/riff/internal/config"
	"github.com/carterperez-dev/riff/internal/core"
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes images to a local directory. The file type comes from the
// content, never from the client's name or header.
type Store struct {
	dir       string
	maxBytes  int64
	publicURL string
}

func NewStore(cfg config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{
		dir:       cfg.Dir,
		maxBytes:  cfg.MaxBytes,
		publicURL: cfg.PublicURL,
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

func (s *Store) tooLarge() *core.AppError {
	return core.ValidationError(fmt.Sprintf(
		"File size too large. Maximum size is %dMB",
		s.maxBytes>>20,
	))
}

// Save stores the image read from src and returns its public URL.
func (s *Store) Save(src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	if int64(len(data)) > s.maxBytes {
		return "", s.tooLarge()
	}
	if len(data) == 0 {
		return "", core.ValidationError("No file provided")
	}

	detected, err := mimetype.DetectReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}

	ext, ok := allowedTypes[detected.String()]
	if !ok {
		return "", core.ValidationError(
			"Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed",
		)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o600); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(s.publicURL, name), nil
}
