// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability once at startup.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER AND STATUS BAR
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	ModeBadge   lipgloss.Style
	DeepBadge   lipgloss.Style
	SpeakBadge  lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ImageTag        lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// SPINNER AND BANNERS
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style

	UpgradeBox   lipgloss.Style
	UpgradeTitle lipgloss.Style
	UpgradeBody  lipgloss.Style

	// ==========================================================================
	// SESSION LIST
	// ==========================================================================

	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionMeta         lipgloss.Style

	// ==========================================================================
	// SHORTCUT HELP
	// ==========================================================================

	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme with all styles configured.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ModeBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.DeepBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Amber).
		Padding(0, 1)

	t.SpeakBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Emerald).
		Padding(0, 1)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.ImageTag = lipgloss.NewStyle().
		Foreground(Violet).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Teal)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.UpgradeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(0, 2)

	t.UpgradeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.UpgradeBody = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.SessionItemSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.SessionMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
