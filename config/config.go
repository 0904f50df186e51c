// Package config loads service settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	Environment string        `yaml:"environment"`
	Server      ServerConfig  `yaml:"server"`
	Log         LogConfig     `yaml:"log"`
	Storage     StorageConfig `yaml:"storage"`
	Limits      LimitsConfig  `yaml:"limits"`
	CORS        CORSConfig    `yaml:"cors"`
	Image       ImageConfig   `yaml:"image"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// StorageConfig names the scratch directories for uploads and outputs.
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	OutputDir string `yaml:"output_dir"`
}

type LimitsConfig struct {
	MaxUploadMB int `yaml:"max_upload_mb"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

type ImageConfig struct {
	JPEGQuality int `yaml:"jpeg_quality"`
}

// Defaults returns the settings of the standalone listener.
func Defaults() *Config {
	return &Config{
		Environment: EnvDev,
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
			OutputDir: "outputs",
		},
		Limits: LimitsConfig{MaxUploadMB: 20},
		CORS:   CORSConfig{Origins: []string{"*"}},
		Image:  ImageConfig{JPEGQuality: 90},
	}
}

// FunctionDefaults returns the settings of the hosted function, where only
// /tmp is writable.
func FunctionDefaults() *Config {
	cfg := Defaults()
	cfg.Environment = EnvProd
	cfg.Storage = StorageConfig{
		UploadDir: "/tmp/uploads",
		OutputDir: "/tmp",
	}
	return cfg
}

// Load applies the YAML file at path (if any) and then environment
// variables on top of base. The result is validated.
func Load(base *Config, path string) (*Config, error) {
	cfg := *base
	cfg.CORS.Origins = append([]string(nil), base.CORS.Origins...)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyLogDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Storage.OutputDir = getEnv("OUTPUT_DIR", cfg.Storage.OutputDir)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.Origins = origins
	}

	var err error
	if cfg.Server.Port, err = getEnvInt("PORT", cfg.Server.Port); err != nil {
		return err
	}
	if cfg.Limits.MaxUploadMB, err = getEnvInt("MAX_UPLOAD_MB", cfg.Limits.MaxUploadMB); err != nil {
		return err
	}
	if cfg.Image.JPEGQuality, err = getEnvInt("JPEG_QUALITY", cfg.Image.JPEGQuality); err != nil {
		return err
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	return nil
}

// applyLogDefaults picks verbose console logs in dev and JSON elsewhere
// unless set explicitly.
func applyLogDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.Environment == EnvDev {
			cfg.Log.Level = "debug"
		}
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.Environment == EnvDev {
			cfg.Log.Format = "console"
		}
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.Required, validation.In(EnvDev, "test", EnvProd)),
		validation.Field(&c.Server),
		validation.Field(&c.Log),
		validation.Field(&c.Storage),
		validation.Field(&c.Limits),
		validation.Field(&c.CORS),
		validation.Field(&c.Image),
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In("json", "console")),
	)
}

func (c StorageConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.UploadDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

func (c LimitsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxUploadMB, validation.Required, validation.Min(1), validation.Max(512)),
	)
}

func (c CORSConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Origins, validation.Required),
	)
}

func (c ImageConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.JPEGQuality, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// MaxUploadBytes is the request body limit derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Limits.MaxUploadMB) * 1024 * 1024
}

// Addr is the listen address of the standalone server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
