package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath       = "config.yaml"
	DefaultAPIBaseURL       = "https://portfolio22-api.osamashaer66.workers.dev"
	defaultPortfolioPath    = "/api/portfolio"
	defaultSessionFile      = "session.json"
	defaultAppDir           = "folio"
	defaultUserAgent        = "folio/1.0"
	defaultMaxFileSizeMB    = 100
	defaultProgressStep     = 10
	defaultProgressInterval = 500 * time.Millisecond
	defaultProgressCap      = 90
	defaultCategory         = "all"
	defaultExportDir        = "./export"
	defaultExportPrefix     = "gallery"
)

type Config struct {
	APIBaseURL          string
	PortfolioURL        string
	SessionPath         string
	GCSBucket           string
	GCPProject          string
	AdminPasswordSecret string

	Upload  UploadConfig  `yaml:"upload"`
	Gallery GalleryConfig `yaml:"gallery"`
	Export  ExportConfig  `yaml:"export"`
	HTTP    HTTPConfig    `yaml:"http"`
}

type UploadConfig struct {
	MaxFileSizeMB    int           `yaml:"max_file_size_mb"`
	ProgressStep     int           `yaml:"progress_step"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	ProgressCap      int           `yaml:"progress_cap"`
}

// MaxFileSize is the upload ceiling in bytes.
func (u UploadConfig) MaxFileSize() int64 {
	return int64(u.MaxFileSizeMB) << 20
}

type GalleryConfig struct {
	DefaultCategory string `yaml:"default_category"`
}

type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

type HTTPConfig struct {
	UserAgent string `yaml:"user_agent"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIBaseURL:          strings.TrimRight(getEnvOrDefault("API_BASE_URL", DefaultAPIBaseURL), "/"),
		PortfolioURL:        os.Getenv("PORTFOLIO_URL"),
		SessionPath:         os.Getenv("FOLIO_SESSION_PATH"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		GCPProject:          os.Getenv("GOOGLE_CLOUD_PROJECT"),
		AdminPasswordSecret: os.Getenv("ADMIN_PASSWORD_SECRET"),
	}

	if err := loadYAMLConfig(cfg, defaultConfigPath); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("No config.yaml found, using defaults")
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyEndpointDefaults(cfg)
	applySessionDefaults(cfg)
	applyUploadDefaults(cfg)
	applyGalleryDefaults(cfg)
	applyExportDefaults(cfg)
	applyHTTPDefaults(cfg)
}

func applyEndpointDefaults(cfg *Config) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.PortfolioURL == "" {
		cfg.PortfolioURL = cfg.APIBaseURL + defaultPortfolioPath
	}
}

func applySessionDefaults(cfg *Config) {
	if cfg.SessionPath != "" {
		return
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	cfg.SessionPath = filepath.Join(dir, defaultAppDir, defaultSessionFile)
}

func applyUploadDefaults(cfg *Config) {
	if cfg.Upload.MaxFileSizeMB <= 0 {
		cfg.Upload.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if cfg.Upload.ProgressStep <= 0 {
		cfg.Upload.ProgressStep = defaultProgressStep
	}
	if cfg.Upload.ProgressInterval <= 0 {
		cfg.Upload.ProgressInterval = defaultProgressInterval
	}
	if cfg.Upload.ProgressCap <= 0 || cfg.Upload.ProgressCap >= 100 {
		cfg.Upload.ProgressCap = defaultProgressCap
	}
}

func applyGalleryDefaults(cfg *Config) {
	if cfg.Gallery.DefaultCategory == "" {
		cfg.Gallery.DefaultCategory = defaultCategory
	}
}

func applyExportDefaults(cfg *Config) {
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = defaultExportDir
	}
	if cfg.Export.Prefix == "" {
		cfg.Export.Prefix = defaultExportPrefix
	}
}

func applyHTTPDefaults(cfg *Config) {
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = defaultUserAgent
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
