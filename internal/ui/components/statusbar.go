// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Status is the current application activity shown in the bar.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusGenerating
	StatusSpeaking
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusGenerating:
		return "Generating image..."
	case StatusSpeaking:
		return "Speaking..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom bar: mode badge, toggles, activity, and the
// remaining image quota when one applies.
type StatusBar struct {
	Mode      model.Mode
	DeepThink bool
	AutoSpeak bool
	Status    Status

	// Remaining is the image actions left today. Negative means premium
	// (unlimited); it is only rendered in image studio mode.
	Remaining int

	Width int

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme, Remaining: -1}
}

// View renders the bar truncated to its width.
func (b StatusBar) View() string {
	var segments []string

	segments = append(segments, b.theme.ModeBadge.Render(b.Mode.Label()))
	if b.DeepThink {
		segments = append(segments, b.theme.DeepBadge.Render("DEEP"))
	}
	if b.AutoSpeak {
		segments = append(segments, b.theme.SpeakBadge.Render("SPEAK"))
	}
	segments = append(segments, b.Status.String())

	if b.Mode == model.ModeImage {
		if b.Remaining < 0 {
			segments = append(segments, "premium")
		} else {
			segments = append(segments, fmt.Sprintf("%d left today", b.Remaining))
		}
	}

	line := strings.Join(segments, "  ")
	if b.Width > 0 && runewidth.StringWidth(line) > b.Width {
		line = runewidth.Truncate(line, b.Width, "...")
	}
	return b.theme.StatusBar.Render(line)
}
