// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/gemini"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/styles"
)

// =============================================================================
// ERROR BANNER
// =============================================================================

// ErrorBanner renders a dismissible failure notice above the input area.
// The displayed title and suggestions follow the error classification.
type ErrorBanner struct {
	theme *styles.Theme

	visible bool
	kind    gemini.Kind
	message string
}

// NewErrorBanner creates a hidden error banner.
func NewErrorBanner(theme *styles.Theme) ErrorBanner {
	return ErrorBanner{theme: theme}
}

// Show classifies err and makes the banner visible.
func (b *ErrorBanner) Show(err error) {
	if err == nil {
		return
	}
	b.visible = true
	b.kind = gemini.Classify(err)
	b.message = err.Error()
}

// Hide dismisses the banner.
func (b *ErrorBanner) Hide() {
	b.visible = false
}

// Visible reports whether the banner is shown.
func (b ErrorBanner) Visible() bool {
	return b.visible
}

// View renders the banner at the given width, or "" when hidden.
func (b ErrorBanner) View(width int) string {
	if !b.visible {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(b.theme.ErrorTitle.Render(b.title()))
	sb.WriteString("\n")
	sb.WriteString(b.theme.ErrorMessage.Render(b.message))
	for _, s := range b.suggestions() {
		sb.WriteString("\n")
		sb.WriteString(b.theme.ShortcutDesc.Render("  - " + s))
	}
	sb.WriteString("\n")
	sb.WriteString(b.theme.ShortcutDesc.Render("press esc to dismiss"))

	return b.theme.ErrorBox.Width(width - 4).Render(sb.String())
}

func (b ErrorBanner) title() string {
	switch b.kind {
	case gemini.KindAuth:
		return "Authentication Problem"
	case gemini.KindNetwork:
		return "Connection Problem"
	case gemini.KindEmptyResponse:
		return "Empty Response"
	default:
		return "Something Went Wrong"
	}
}

func (b ErrorBanner) suggestions() []string {
	switch b.kind {
	case gemini.KindAuth:
		return []string{
			"Check that GEMINI_API_KEY is set and valid",
			"Keys are issued at aistudio.google.com",
		}
	case gemini.KindNetwork:
		return []string{
			"Check your internet connection",
			"The service may be briefly unavailable; retry in a moment",
		}
	case gemini.KindEmptyResponse:
		return []string{
			"Try rephrasing the message and sending again",
		}
	default:
		return nil
	}
}
