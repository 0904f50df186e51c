package app

import (
	"io"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/akila/pdf-conversion-api/config"
	"github.com/akila/pdf-conversion-api/logging"
)

// Bootstrap loads .env (if present), the configuration on top of base and
// the logger. logOut defaults to stdout.
func Bootstrap(base *config.Config, configPath string, logOut io.Writer) (*config.Config, zerolog.Logger, error) {
	// Missing .env is normal in production.
	_ = godotenv.Load()

	cfg, err := config.Load(base, configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOut,
	})
	return cfg, logger, nil
}
