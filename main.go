// SM AI Partners - a conversational AI study partner for the terminal.
//
// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/audio"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/cli"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/config"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/gemini"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/quota"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/chat"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdExport:
		exitOnError(cli.HandleExport(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the full application and hands control to Bubble Tea.
func runTUI() {
	ctx := context.Background()

	app, err := cli.Bootstrap(ctx, true)
	if err != nil {
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "No Gemini API key configured.")
			fmt.Fprintln(os.Stderr, "Set GEMINI_API_KEY, or add api_key under [gemini] in ~/.sm-ai-partner/config.toml.")
			os.Exit(1)
		}
		exitOnError(err)
	}
	defer app.Close()

	// Quota thresholds apply live on config edits; model and storage
	// changes need a restart.
	if watcher, err := config.NewWatcher(config.DefaultPath(), func(cfg *config.Config) {
		app.Gate.SetLimits(quota.Limits{
			ImageUpload:     cfg.Quota.ImageUploadLimit,
			ImageGeneration: cfg.Quota.ImageGenerationLimit,
		})
		app.Log.Info("config reloaded; quota limits applied, model changes need a restart")
	}); err == nil {
		if err := watcher.Watch(); err != nil {
			app.Log.Warnf("config watcher failed to start: %v", err)
		}
		defer watcher.Close()
	}

	opts := chat.Options{
		Theme: styles.NewTheme(),
		Store: app.Store,
		Orch:  app.Orch,
		Gate:  app.Gate,
		Log:   app.Log,
	}

	// Speech is best-effort: without a sound device the chat still works,
	// just silently.
	if sink, err := audio.NewDeviceSink(); err != nil {
		app.Log.Warnf("audio device unavailable, speech disabled: %v", err)
	} else {
		speaker := audio.NewSpeaker(app.Client, sink, app.Cfg.Chat.SpeechMaxChars, app.Log)
		app.Orch.SetSpeaker(speaker)
		opts.Speaker = speaker
	}

	program := tea.NewProgram(
		chat.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		exitOnError(err)
	}
}
