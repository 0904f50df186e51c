package handlers

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akila/pdf-conversion-api/models"
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".html": "text/html; charset=utf-8",
}

func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// sendFile streams the artifact as an attachment named after its base name.
// Once the status line is out, a failed copy can only be logged.
func (h *ConversionHandler) sendFile(w http.ResponseWriter, r *http.Request, log zerolog.Logger, path string) {
	f, err := os.Open(path)
	if err != nil {
		h.respondError(w, log, models.NewError(models.ErrResponseDeliveryFailed, "open result", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondError(w, log, models.NewError(models.ErrResponseDeliveryFailed, "stat result", err))
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Type", contentType(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil {
		log.Error().
			Err(err).
			Str("kind", string(models.ErrResponseDeliveryFailed)).
			Int64("sent", n).
			Int64("size", info.Size()).
			Bool("client_gone", r.Context().Err() != nil).
			Msg("error sending file")
		return
	}
	log.Info().Str("file", name).Int64("bytes", n).Msg("conversion delivered")
}
