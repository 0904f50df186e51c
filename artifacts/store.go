// Package artifacts owns the scratch files created while a request is served:
// where they live, how they are named and when they are removed.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store hands out unique paths inside the upload and output scratch directories.
type Store struct {
	UploadDir string
	OutputDir string
	now       func() time.Time
}

func NewStore(uploadDir, outputDir string) *Store {
	return &Store{UploadDir: uploadDir, OutputDir: outputDir, now: time.Now}
}

// EnsureDirs creates both scratch directories if they are missing.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.UploadDir, s.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create scratch directory %s: %w", dir, err)
		}
	}
	return nil
}

// NewInputPath returns a fresh path for an uploaded document.
func (s *Store) NewInputPath() string {
	return filepath.Join(s.UploadDir, uuid.New().String()+".pdf")
}

// NewOutputBase returns a fresh output path without extension, e.g.
// outputs/converted_1700000000000_1b9d6bcd. The timestamp keeps names
// sortable, the uuid fragment keeps concurrent requests apart.
func (s *Store) NewOutputBase() string {
	id := uuid.New().String()[:8]
	name := fmt.Sprintf("converted_%d_%s", s.now().UnixMilli(), id)
	return filepath.Join(s.OutputDir, name)
}
