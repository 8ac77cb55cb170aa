// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete application configuration.
type Config struct {
	Version string `toml:"version"`

	Gemini  GeminiConfig  `toml:"gemini"`
	Quota   QuotaConfig   `toml:"quota"`
	Chat    ChatConfig    `toml:"chat"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// GeminiConfig holds generative-service settings.
type GeminiConfig struct {
	// APIKey is the Gemini API key. Overridden by GEMINI_API_KEY.
	APIKey string `toml:"api_key"`
	// TextModel is the default streaming chat model.
	TextModel string `toml:"text_model"`
	// DeepModel is used when deep reasoning is requested.
	DeepModel string `toml:"deep_model"`
	// TTSModel is the speech-synthesis model.
	TTSModel string `toml:"tts_model"`
	// ImageModel is the image-generation model.
	ImageModel string `toml:"image_model"`
	// Voice is the prebuilt voice name for speech synthesis.
	Voice string `toml:"voice"`
	// RequestsPerMinute caps outbound generative calls (0 = no limit).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// QuotaConfig holds the daily thresholds for constrained actions.
// Thresholds apply to non-premium ledgers only.
type QuotaConfig struct {
	// ImageUploadLimit is the daily cap on image-bearing requests.
	ImageUploadLimit int `toml:"image_upload_limit"`
	// ImageGenerationLimit is the daily cap on generated images.
	ImageGenerationLimit int `toml:"image_generation_limit"`
}

// ChatConfig holds conversation tuning.
type ChatConfig struct {
	// HistoryWindow is how many recent turns are sent as context.
	HistoryWindow int `toml:"history_window"`
	// SpeechMaxChars caps the text length sent for speech synthesis.
	SpeechMaxChars int `toml:"speech_max_chars"`
}

// StorageConfig holds durable storage settings.
type StorageConfig struct {
	// Path is the SQLite database file (empty = <data dir>/partner.db).
	Path string `toml:"path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	// File is the log file path (empty = <data dir>/app.log).
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Gemini: GeminiConfig{
			TextModel:         "gemini-3-flash-preview",
			DeepModel:         "gemini-3-pro-preview",
			TTSModel:          "gemini-2.5-flash-preview-tts",
			ImageModel:        "imagen-3.0-generate-002",
			Voice:             "Kore",
			RequestsPerMinute: 30,
		},
		Quota: QuotaConfig{
			ImageUploadLimit:     3,
			ImageGenerationLimit: 3,
		},
		Chat: ChatConfig{
			HistoryWindow:  10,
			SpeechMaxChars: 1500,
		},
	}
}

// DataDir returns the application data directory (~/.sm-ai-partner).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sm-ai-partner"
	}
	return filepath.Join(home, ".sm-ai-partner")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error: the defaults are returned. A .env file in
// the working directory is loaded first so GEMINI_API_KEY can live there
// during development.
func Load(path string) (*Config, error) {
	// Best effort; absence of .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			cfg.fillZeroes()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.fillZeroes()
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if level := os.Getenv("SM_AI_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// fillZeroes restores defaults for fields an edited config file zeroed out.
func (c *Config) fillZeroes() {
	def := Default()
	if c.Gemini.TextModel == "" {
		c.Gemini.TextModel = def.Gemini.TextModel
	}
	if c.Gemini.DeepModel == "" {
		c.Gemini.DeepModel = def.Gemini.DeepModel
	}
	if c.Gemini.TTSModel == "" {
		c.Gemini.TTSModel = def.Gemini.TTSModel
	}
	if c.Gemini.ImageModel == "" {
		c.Gemini.ImageModel = def.Gemini.ImageModel
	}
	if c.Gemini.Voice == "" {
		c.Gemini.Voice = def.Gemini.Voice
	}
	if c.Quota.ImageUploadLimit <= 0 {
		c.Quota.ImageUploadLimit = def.Quota.ImageUploadLimit
	}
	if c.Quota.ImageGenerationLimit <= 0 {
		c.Quota.ImageGenerationLimit = def.Quota.ImageGenerationLimit
	}
	if c.Chat.HistoryWindow <= 0 {
		c.Chat.HistoryWindow = def.Chat.HistoryWindow
	}
	if c.Chat.SpeechMaxChars <= 0 {
		c.Chat.SpeechMaxChars = def.Chat.SpeechMaxChars
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(DataDir(), "partner.db")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(DataDir(), "app.log")
	}
}

// HasAPIKey reports whether a Gemini credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.Gemini.APIKey != ""
}
