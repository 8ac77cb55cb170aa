// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/quota"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/styles"
)

// =============================================================================
// UPGRADE PROMPT
// =============================================================================

// UpgradePrompt is the notice shown when a free-tier daily image limit is
// exhausted. It names the blocked action and its limit; counters reset at
// the next local midnight.
type UpgradePrompt struct {
	theme *styles.Theme

	visible bool
	action  quota.Action
	limit   int
}

// NewUpgradePrompt creates a hidden upgrade prompt.
func NewUpgradePrompt(theme *styles.Theme) UpgradePrompt {
	return UpgradePrompt{theme: theme}
}

// Show makes the prompt visible for the blocked action.
func (u *UpgradePrompt) Show(action quota.Action, limit int) {
	u.visible = true
	u.action = action
	u.limit = limit
}

// Hide dismisses the prompt.
func (u *UpgradePrompt) Hide() {
	u.visible = false
}

// Visible reports whether the prompt is shown.
func (u UpgradePrompt) Visible() bool {
	return u.visible
}

// View renders the prompt at the given width, or "" when hidden.
func (u UpgradePrompt) View(width int) string {
	if !u.visible {
		return ""
	}

	verb := "upload"
	if u.action == quota.ActionImageGeneration {
		verb = "generate"
	}

	var sb strings.Builder
	sb.WriteString(u.theme.UpgradeTitle.Render("Daily Limit Reached"))
	sb.WriteString("\n")
	sb.WriteString(u.theme.UpgradeBody.Render(
		fmt.Sprintf("Free accounts can %s %d images per day. Your counter resets at midnight.", verb, u.limit)))
	sb.WriteString("\n")
	sb.WriteString(u.theme.UpgradeBody.Render("Upgrade to Premium for unlimited images."))
	sb.WriteString("\n")
	sb.WriteString(u.theme.ShortcutDesc.Render("press esc to dismiss"))

	return u.theme.UpgradeBox.Width(width - 4).Render(sb.String())
}
