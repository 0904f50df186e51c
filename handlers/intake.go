package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/akila/pdf-conversion-api/models"
	"github.com/akila/pdf-conversion-api/orchestrator"
)

// multipartMemory is how much of the form is kept in memory before the
// multipart reader spills to its own temp files.
const multipartMemory = 8 << 20

var errUploadTooLarge = errors.New("upload too large")

// intake stores the uploaded file at a fresh path and reads the requested
// format. The stored file is registered with tracker before it is written.
func (h *ConversionHandler) intake(w http.ResponseWriter, r *http.Request, tracker orchestrator.ArtifactTracker) (models.ConversionRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return models.ConversionRequest{}, errUploadTooLarge
		}
		// Not a multipart body at all, or a broken one: either way no file arrived.
		return models.ConversionRequest{}, models.NewError(models.ErrNoFileProvided, "no file uploaded", err)
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		return models.ConversionRequest{}, models.NoFileProvided()
	}
	defer file.Close()

	path := h.inputs.NewInputPath()
	tracker.Track(path)

	out, err := os.Create(path)
	if err != nil {
		return models.ConversionRequest{}, fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return models.ConversionRequest{}, fmt.Errorf("store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return models.ConversionRequest{}, fmt.Errorf("store upload: %w", err)
	}

	format := strings.TrimSpace(r.FormValue(FormatField))
	if format == "" {
		format = models.DefaultFormat
	}

	return models.ConversionRequest{
		SourcePath:   path,
		Format:       format,
		OriginalName: header.Filename,
	}, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
