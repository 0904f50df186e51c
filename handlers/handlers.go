package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akila/pdf-conversion-api/artifacts"
	"github.com/akila/pdf-conversion-api/models"
	"github.com/akila/pdf-conversion-api/orchestrator"
)

const (
	// UploadField is the multipart field carrying the document.
	UploadField = "pdf"
	// FormatField is the optional multipart field naming the target format.
	FormatField = "format"

	RootMessage = "PDF Conversion API is running. Use POST /convert to convert files."
)

// Converter runs a conversion for an intake result.
type Converter interface {
	Handle(ctx context.Context, req models.ConversionRequest, tracker orchestrator.ArtifactTracker) models.ConversionResult
}

// InputPaths hands out unique paths for uploaded documents.
type InputPaths interface {
	NewInputPath() string
}

type ConversionHandler struct {
	converter      Converter
	inputs         InputPaths
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewConversionHandler(converter Converter, inputs InputPaths, maxUploadBytes int64, logger zerolog.Logger) *ConversionHandler {
	return &ConversionHandler{
		converter:      converter,
		inputs:         inputs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *ConversionHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, RootMessage)
}

func (h *ConversionHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

// HandleConvert accepts one uploaded PDF, converts it and streams the result
// back. Every temporary file created on the way is deleted before the
// handler returns, whatever the outcome.
func (h *ConversionHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = uuid.New().String()
	}
	log := h.requestLogger(r, reqID)

	scope := artifacts.NewScope(log)
	defer scope.Release()
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				log.Warn().Err(err).Msg("failed to remove multipart temp files")
			}
		}
	}()

	req, err := h.intake(w, r, scope)
	if err != nil {
		h.respondError(w, log, err)
		return
	}
	req.ID = reqID

	log.Info().
		Str("file", req.OriginalName).
		Str("format", req.Format).
		Msg("file received")

	result := h.converter.Handle(r.Context(), req, scope)
	if !result.Success {
		h.respondError(w, log, result.Error)
		return
	}
	h.sendFile(w, r, log, result.Path)
}

func (h *ConversionHandler) respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Info().Err(err).Int("status", status).Msg("request rejected")
	}
	writeText(w, status, body)
}

// statusFor maps an intake or conversion error to the response sent to the client.
func statusFor(err error) (int, string) {
	if errors.Is(err, errUploadTooLarge) {
		return http.StatusRequestEntityTooLarge, "File too large."
	}

	var convErr *models.ConversionError
	if !errors.As(err, &convErr) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch convErr.Kind {
	case models.ErrNoFileProvided:
		return http.StatusBadRequest, "No file uploaded."
	case models.ErrUnsupportedFormat:
		return http.StatusBadRequest, "Unsupported format"
	case models.ErrConversionFailed:
		return http.StatusInternalServerError, "An error occurred during conversion: " + convErr.Message
	case models.ErrResponseDeliveryFailed:
		return http.StatusInternalServerError, "Error sending file"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// requestLogger prefers the logger attached by the router middleware, which
// already carries the request id.
func (h *ConversionHandler) requestLogger(r *http.Request, reqID string) zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return h.logger.With().Str("request_id", reqID).Logger()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
