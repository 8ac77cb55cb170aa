// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/config"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/gemini"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/orchestrator"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/quota"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
)

// =============================================================================
// APPLICATION BOOTSTRAP
// =============================================================================

// App is the wired application: config, storage, quota gate, Gemini
// client, and the orchestrator. Shared by the TUI and the subcommands.
type App struct {
	Cfg    *config.Config
	Log    logging.Logger
	DB     *store.DB
	Store  *store.SessionStore
	Gate   *quota.Gate
	Client *gemini.Client
	Orch   *orchestrator.Orchestrator
}

// Bootstrap loads configuration and opens storage. With requireKey set, a
// missing API key is an error; otherwise the Gemini client and
// orchestrator are left nil for storage-only commands.
func Bootstrap(ctx context.Context, requireKey bool) (*App, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.DataDir(), 0o755); err != nil {
		return nil, err
	}

	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = filepath.Join(config.DataDir(), "app.log")
	}
	log := logging.OpenFile(cfg.Logging.Level, logPath)

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir(), "partner.db")
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	app := &App{
		Cfg:   cfg,
		Log:   log,
		DB:    db,
		Store: store.NewSessionStore(db, log),
		Gate: quota.NewGate(db, quota.Limits{
			ImageUpload:     cfg.Quota.ImageUploadLimit,
			ImageGeneration: cfg.Quota.ImageGenerationLimit,
		}, log),
	}

	if !cfg.HasAPIKey() {
		if requireKey {
			db.Close()
			return nil, gemini.ErrMissingAPIKey
		}
		return app, nil
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		TextModel:         cfg.Gemini.TextModel,
		DeepModel:         cfg.Gemini.DeepModel,
		TTSModel:          cfg.Gemini.TTSModel,
		ImageModel:        cfg.Gemini.ImageModel,
		Voice:             cfg.Gemini.Voice,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	app.Client = client
	app.Orch = orchestrator.New(app.Store, client, nil, cfg.Chat.HistoryWindow, log)
	return app, nil
}

// Close releases the storage handle.
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warnf("closing database: %v", err)
		}
	}
}
