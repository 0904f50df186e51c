package app

import (
	"archive/zip"
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/akila/pdf-conversion-api/config"
	"github.com/akila/pdf-conversion-api/converters"
	"github.com/akila/pdf-conversion-api/handlers"
	"github.com/akila/pdf-conversion-api/testpdf"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	cfg.Storage.OutputDir = filepath.Join(dir, "outputs")

	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func convert(t *testing.T, h http.Handler, pdf []byte, format string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(handlers.UploadField, "report.pdf")
	require.NoError(t, err)
	_, err = fw.Write(pdf)
	require.NoError(t, err)
	if format != "" {
		require.NoError(t, mw.WriteField(handlers.FormatField, format))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertNoArtifacts(t *testing.T, a *App) {
	t.Helper()
	for _, dir := range []string{a.Store.UploadDir, a.Store.OutputDir} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "leftover files in %s", dir)
	}
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	return params["filename"]
}

func TestConvert_AllFormats(t *testing.T) {
	a := newTestApp(t)
	pdf := testpdf.Build("Invoice 2024", "Second page")

	tests := []struct {
		format string
		ext    string
		check  func(t *testing.T, path string)
	}{
		{"", ".pdf", func(t *testing.T, path string) {
			n, err := converters.PageCount(path)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		}},
		{"PDF", ".pdf", func(t *testing.T, path string) {
			n, err := converters.PageCount(path)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		}},
		{"word", ".docx", func(t *testing.T, path string) {
			zr, err := zip.OpenReader(path)
			require.NoError(t, err)
			defer zr.Close()
			var found bool
			for _, f := range zr.File {
				if f.Name != "word/document.xml" {
					continue
				}
				rc, err := f.Open()
				require.NoError(t, err)
				data, err := io.ReadAll(rc)
				rc.Close()
				require.NoError(t, err)
				assert.Contains(t, string(data), "Invoice 2024")
				found = true
			}
			assert.True(t, found)
		}},
		{"Excel", ".xlsx", func(t *testing.T, path string) {
			f, err := excelize.OpenFile(path)
			require.NoError(t, err)
			defer f.Close()
			cell, err := f.GetCellValue(converters.SheetName, "A1")
			require.NoError(t, err)
			assert.Contains(t, cell, "Invoice 2024")
		}},
		{"html", ".html", func(t *testing.T, path string) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "<pre>")
			assert.Contains(t, string(data), "Invoice 2024")
		}},
		{"png", ".png", checkImage("png")},
		{"jpg", ".jpg", checkImage("jpeg")},
		{"JPEG", ".jpeg", checkImage("jpeg")},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			rec := convert(t, a.Handler, pdf, tt.format)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			require.NotZero(t, rec.Body.Len())

			name := attachmentName(t, rec)
			assert.True(t, strings.HasPrefix(name, "converted_"), name)
			assert.Equal(t, tt.ext, filepath.Ext(name))

			out := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(out, rec.Body.Bytes(), 0o644))
			tt.check(t, out)

			assertNoArtifacts(t, a)
		})
	}
}

func checkImage(format string) func(t *testing.T, path string) {
	return func(t *testing.T, path string) {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		cfg, got, err := image.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, format, got)
		assert.Equal(t, converters.ImageWidth, cfg.Width)
		assert.Equal(t, converters.ImageHeight, cfg.Height)
	}
}

func TestConvert_UnsupportedFormatLeavesNothingBehind(t *testing.T) {
	a := newTestApp(t)

	for _, format := range []string{"gif", "docx", "tiff", "markdown"} {
		rec := convert(t, a.Handler, testpdf.Build("x"), format)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unsupported format", rec.Body.String())
		assertNoArtifacts(t, a)
	}
}

func TestConvert_MalformedInput(t *testing.T) {
	a := newTestApp(t)

	rec := convert(t, a.Handler, []byte("definitely not a pdf"), "word")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "An error occurred during conversion: "), rec.Body.String())
	assertNoArtifacts(t, a)
}

func TestConvert_ConcurrentRequests(t *testing.T) {
	a := newTestApp(t)

	const n = 6
	names := make([]string, n)
	bodies := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := strings.Repeat("x", i+1)
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, _ := mw.CreateFormFile(handlers.UploadField, "in.pdf")
			fw.Write(testpdf.Build(text))
			mw.WriteField(handlers.FormatField, "html")
			mw.Close()

			req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			rec := httptest.NewRecorder()
			a.Handler.ServeHTTP(rec, req)

			_, params, _ := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
			names[i] = params["filename"]
			bodies[i] = rec.Body.Bytes()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NotEmpty(t, names[i])
		assert.False(t, seen[names[i]], "duplicate output name %s", names[i])
		seen[names[i]] = true
		// Each response carries its own document's text.
		assert.Contains(t, string(bodies[i]), "<pre>"+strings.Repeat("x", i+1)+"</pre>")
	}
	assertNoArtifacts(t, a)
}

func TestConvert_ImageOnlyRendersFirstPage(t *testing.T) {
	a := newTestApp(t)
	pdf := testpdf.Build("one", "two", "three", "four")

	png := convert(t, a.Handler, pdf, "png")
	jpg := convert(t, a.Handler, pdf, "jpg")
	require.Equal(t, http.StatusOK, png.Code)
	require.Equal(t, http.StatusOK, jpg.Code)

	pngCfg, pngFormat, err := image.DecodeConfig(bytes.NewReader(png.Body.Bytes()))
	require.NoError(t, err)
	jpgCfg, jpgFormat, err := image.DecodeConfig(bytes.NewReader(jpg.Body.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "png", pngFormat)
	assert.Equal(t, "jpeg", jpgFormat)
	assert.Equal(t, pngCfg.Width, jpgCfg.Width)
	assert.Equal(t, pngCfg.Height, jpgCfg.Height)
	assertNoArtifacts(t, a)
}
