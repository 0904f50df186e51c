package artifacts

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akila/pdf-conversion-api/models"
)

func TestStore_EnsureDirs(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "up", "nested"), filepath.Join(dir, "out"))

	require.NoError(t, s.EnsureDirs())
	assert.DirExists(t, s.UploadDir)
	assert.DirExists(t, s.OutputDir)
	// Second call is a no-op.
	require.NoError(t, s.EnsureDirs())
}

func TestStore_PathsAreUnique(t *testing.T) {
	s := NewStore("uploads", "outputs")
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	inputs := make(map[string]bool)
	outputs := make(map[string]bool)
	for i := 0; i < 100; i++ {
		in := s.NewInputPath()
		out := s.NewOutputBase()
		assert.False(t, inputs[in])
		assert.False(t, outputs[out])
		inputs[in] = true
		outputs[out] = true

		assert.Equal(t, "uploads", filepath.Dir(in))
		assert.Equal(t, ".pdf", filepath.Ext(in))
		assert.Equal(t, "outputs", filepath.Dir(out))
		assert.True(t, strings.HasPrefix(filepath.Base(out), "converted_1700000000000_"))
	}
}

func TestScope_ReleaseRemovesTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.docx")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))

	s := NewScope(zerolog.Nop())
	s.Track(a)
	s.Track(b)
	s.Track(a)
	s.Track("")
	assert.Equal(t, []string{a, b}, s.Paths())

	require.NoError(t, s.Release())
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
}

func TestScope_ReleaseIgnoresMissingFiles(t *testing.T) {
	s := NewScope(zerolog.Nop())
	s.Track(filepath.Join(t.TempDir(), "never-written.png"))

	assert.NoError(t, s.Release())
}

func TestScope_ReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))

	s := NewScope(zerolog.Nop())
	s.Track(a)
	require.NoError(t, s.Release())

	// Recreate the file: a second Release must not touch it.
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, s.Release())
	assert.FileExists(t, a)
}

func TestScope_ReleaseReportsFailures(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory cannot be removed with os.Remove.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o755))
	ok := filepath.Join(dir, "ok.pdf")
	require.NoError(t, os.WriteFile(ok, []byte("x"), 0o644))

	var buf bytes.Buffer
	s := NewScope(zerolog.New(&buf))
	s.Track(blocked)
	s.Track(ok)

	err := s.Release()
	require.Error(t, err)
	var convErr *models.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, models.ErrCleanupFailed, convErr.Kind)

	assert.NoFileExists(t, ok, "remaining artifacts are still removed")
	assert.Contains(t, buf.String(), "cleanup_failed")
}

func TestScope_ConcurrentTrack(t *testing.T) {
	s := NewScope(zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Track(filepath.Join("outputs", string(rune('a'+i%26))))
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Paths(), 26)
}
