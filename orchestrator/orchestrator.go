// Package orchestrator runs one conversion: dispatch by format, invoke the
// converter, report a typed result. It knows nothing about HTTP so the
// listener, the hosted function and the CLI share it.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/akila/pdf-conversion-api/converters"
	"github.com/akila/pdf-conversion-api/models"
)

// Dispatcher maps a format token to a conversion target.
type Dispatcher interface {
	Resolve(token string) (converters.Target, error)
}

// PathSource hands out unique output paths, without extension.
type PathSource interface {
	NewOutputBase() string
}

// ArtifactTracker is told about every file the orchestrator may create so
// the caller can delete it later.
type ArtifactTracker interface {
	Track(path string)
}

type Orchestrator struct {
	dispatcher Dispatcher
	paths      PathSource
	logger     zerolog.Logger
}

func New(dispatcher Dispatcher, paths PathSource, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		dispatcher: dispatcher,
		paths:      paths,
		logger:     logger,
	}
}

// Handle converts req.SourcePath into req.Format. On success the result
// carries the path of the produced artifact. Nothing is written when the
// format is unsupported.
func (o *Orchestrator) Handle(ctx context.Context, req models.ConversionRequest, tracker ArtifactTracker) models.ConversionResult {
	log := o.logger.With().Str("request_id", req.ID).Str("format", req.Format).Logger()

	if req.SourcePath == "" {
		log.Info().Msg("no input artifact")
		return models.Failed(models.NoFileProvided())
	}

	base := o.paths.NewOutputBase()

	target, err := o.dispatcher.Resolve(req.Format)
	if err != nil {
		if errors.Is(err, converters.ErrUnsupportedFormat) {
			log.Info().Msg("unsupported format requested")
			return models.Failed(models.UnsupportedFormat(req.Format))
		}
		log.Error().Err(err).Msg("format dispatch failed")
		return models.Failed(models.ConversionFailed(err))
	}

	outputPath := base + target.Ext
	if tracker != nil {
		tracker.Track(outputPath)
	}

	log.Info().
		Str("target", string(target.Format)).
		Str("input", req.SourcePath).
		Str("output", outputPath).
		Msg("conversion started")

	start := time.Now()
	result, err := target.Converter.Convert(ctx, req.SourcePath, outputPath)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("conversion failed")
		return models.Failed(models.ConversionFailed(err))
	}
	if tracker != nil && result != outputPath {
		tracker.Track(result)
	}

	log.Info().Str("output", result).Dur("elapsed", time.Since(start)).Msg("conversion completed")
	return models.Succeeded(result)
}
