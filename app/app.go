// Package app assembles the service from configuration. The standalone
// listener, the hosted function and the CLI all start here.
package app

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/akila/pdf-conversion-api/artifacts"
	"github.com/akila/pdf-conversion-api/config"
	"github.com/akila/pdf-conversion-api/converters"
	"github.com/akila/pdf-conversion-api/handlers"
	"github.com/akila/pdf-conversion-api/orchestrator"
)

type App struct {
	Config       *config.Config
	Store        *artifacts.Store
	Registry     *converters.Registry
	Orchestrator *orchestrator.Orchestrator
	Handler      http.Handler
}

// New creates the scratch directories and builds the HTTP handler.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store := artifacts.NewStore(cfg.Storage.UploadDir, cfg.Storage.OutputDir)
	if err := store.EnsureDirs(); err != nil {
		return nil, err
	}

	registry := converters.NewRegistry(converters.Options{
		JPEGQuality: cfg.Image.JPEGQuality,
		Logger:      logger,
	})
	orch := orchestrator.New(registry, store, logger.With().Str("component", "orchestrator").Logger())

	h := handlers.NewConversionHandler(orch, store, cfg.MaxUploadBytes(), logger)
	router := handlers.NewRouter(h, logger, cfg.CORS.Origins)

	logger.Debug().
		Strs("formats", registry.Tokens()).
		Str("upload_dir", store.UploadDir).
		Str("output_dir", store.OutputDir).
		Msg("service assembled")

	return &App{
		Config:       cfg,
		Store:        store,
		Registry:     registry,
		Orchestrator: orch,
		Handler:      router,
	}, nil
}
