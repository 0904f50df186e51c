package artifacts

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/akila/pdf-conversion-api/models"
)

// Scope collects the temporary files of one request and deletes them on
// Release. Callers defer Release right after creating the scope.
type Scope struct {
	logger   zerolog.Logger
	mu       sync.Mutex
	paths    []string
	seen     map[string]struct{}
	released bool
}

func NewScope(logger zerolog.Logger) *Scope {
	return &Scope{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Track registers a path for deletion. Paths that do not exist yet are fine.
func (s *Scope) Track(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[path]; ok {
		return
	}
	s.seen[path] = struct{}{}
	s.paths = append(s.paths, path)
}

// Paths returns the tracked paths in registration order.
func (s *Scope) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Release removes every tracked file. Files that are already gone are
// ignored; any other failure is logged and returned, never retried.
// Subsequent calls are no-ops.
func (s *Scope) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	var errs []error
	for _, path := range paths {
		err := os.Remove(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		s.logger.Warn().
			Err(err).
			Str("path", path).
			Str("kind", string(models.ErrCleanupFailed)).
			Msg("failed to delete temporary artifact")
		errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
	}
	if len(errs) > 0 {
		return models.NewError(models.ErrCleanupFailed, "failed to delete temporary artifacts", errors.Join(errs...))
	}
	s.logger.Debug().Int("artifacts", len(paths)).Msg("temporary artifacts released")
	return nil
}
