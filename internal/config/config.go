// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all settings. Environment variables use the RECAP_
// prefix, e.g. RECAP_DB_PATH, RECAP_HTTP_PORT, RECAP_GEMINI_API_KEY.
type Config struct {
	DBPath   string `envconfig:"DB_PATH" default:""`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8087"`

	// Metadata sync quiet period in milliseconds.
	DebounceMs int `envconfig:"DEBOUNCE_MS" default:"500"`

	// Narrative summary service.
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`

	// Image re-encode bounds.
	ImageMaxDim uint `envconfig:"IMAGE_MAX_DIM" default:"1200"`
	JPEGQuality int  `envconfig:"JPEG_QUALITY" default:"80"`
	HEICQuality int  `envconfig:"HEIC_QUALITY" default:"70"`

	// Default BGM source used until the user uploads a custom track.
	BGMSource string `envconfig:"BGM_SOURCE" default:"assets/bgm.mp3"`
}

// New parses the environment into a Config.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("RECAP", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return &cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recap.db"
	}
	return filepath.Join(home, ".recap-archive", "recap.db")
}
