// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/orchestrator"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/quota"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/util"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk answers one question and exits. The exchange is persisted as
// a regular session, the same as a TUI conversation.
func HandleAsk(args Args) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	modeName := fs.String("mode", "education", "conversation mode: education, coding, or image")
	deep := fs.Bool("deep", false, "use the deep reasoning model")
	imagePath := fs.String("image", "", "attach an image file to the question")
	audioPath := fs.String("audio", "", "transcribe an audio clip and use it as the question")
	outPath := fs.String("out", "generated.png", "output file for generated images")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" && *audioPath == "" {
		return fmt.Errorf("nothing to ask; usage: ask [flags] <text>")
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	app, err := Bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if *audioPath != "" {
		transcript, err := transcribeClip(ctx, app, *audioPath)
		if err != nil {
			return err
		}
		if prompt == "" {
			prompt = transcript
		} else {
			prompt = prompt + "\n\n" + transcript
		}
		fmt.Printf("> %s\n\n", transcript)
	}

	opts := orchestrator.SendOptions{
		Prompt:    prompt,
		Mode:      mode,
		DeepThink: *deep,
	}

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return fmt.Errorf("reading attachment: %w", err)
		}
		opts.Image = base64.StdEncoding.EncodeToString(data)
	}

	if action, gated := gatedAction(mode, opts.Image); gated {
		decision := app.Gate.Check(action)
		if !decision.Allowed {
			return fmt.Errorf("daily image limit reached (%d per day); resets at midnight, or upgrade to premium",
				app.Gate.Limit(action))
		}
	}

	if mode == model.ModeImage {
		return askImage(ctx, app, opts, *outPath)
	}

	app.Orch.SetNotify(func(u orchestrator.Update) {
		fmt.Print(u.Delta)
	})
	if _, err := app.Orch.Send(ctx, opts); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

// askImage generates an image and writes it to disk.
func askImage(ctx context.Context, app *App, opts orchestrator.SendOptions, outPath string) error {
	res, err := app.Orch.Send(ctx, opts)
	if err != nil {
		return err
	}

	msgs := app.Store.Messages(res.SessionID)
	encoded := msgs[len(msgs)-1].Image
	if encoded == "" {
		return fmt.Errorf("no image was generated")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding generated image: %w", err)
	}
	if err := util.AtomicWriteFile(outPath, raw, 0o644); err != nil {
		return err
	}
	fmt.Printf("image written to %s\n", outPath)
	return nil
}

// transcribeClip turns a recorded question into text.
func transcribeClip(ctx context.Context, app *App, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading audio clip: %w", err)
	}
	transcript, err := app.Client.Transcribe(ctx, data, audioMIMEType(path))
	if err != nil {
		return "", err
	}
	if transcript == "" {
		return "", fmt.Errorf("no speech recognized in %s", path)
	}
	return transcript, nil
}

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mp3"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	default:
		return "audio/wav"
	}
}

// gatedAction mirrors the TUI gating rules for one-shot asks.
func gatedAction(mode model.Mode, image string) (quota.Action, bool) {
	if mode == model.ModeImage {
		return quota.ActionImageGeneration, true
	}
	if image != "" {
		return quota.ActionImageUpload, true
	}
	return 0, false
}

func parseMode(name string) (model.Mode, error) {
	switch strings.ToLower(name) {
	case "education":
		return model.ModeEducation, nil
	case "coding":
		return model.ModeCoding, nil
	case "image":
		return model.ModeImage, nil
	default:
		return "", fmt.Errorf("unknown mode %q (education, coding, image)", name)
	}
}
