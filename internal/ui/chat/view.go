// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/components"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/util"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.sessionsOpen {
		return m.viewSessionList()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.errBanner.Visible() {
		b.WriteString(m.errBanner.View(m.width))
		b.WriteString("\n")
	}
	if m.upgrade.Visible() {
		b.WriteString(m.upgrade.View(m.width))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.theme.ThinkingText.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.viewInput())
	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m *Model) viewHeader() string {
	title := "New Conversation"
	if session, ok := m.st.Get(m.sessionID); ok {
		title = session.Title
	}
	return m.theme.Header.Render("SM AI Partners") + " " + m.theme.HeaderTitle.Render(title)
}

func (m *Model) viewInput() string {
	var hint string
	if m.pendingImage != "" {
		hint = m.theme.ImageTag.Render(" [image attached]")
	}
	return m.theme.InputContainer.Render(m.textarea.View()) + hint
}

func (m *Model) viewStatusBar() string {
	bar := m.statusBar
	bar.Mode = m.mode
	bar.DeepThink = m.deepThink
	bar.AutoSpeak = m.autoSpeak
	bar.Status = m.currentStatus()
	if action, gated := m.quotaAction(); gated {
		bar.Remaining = m.gate.Remaining(action)
	}
	return bar.View()
}

func (m *Model) currentStatus() components.Status {
	switch {
	case m.streaming && m.mode == model.ModeImage:
		return components.StatusGenerating
	case m.streaming:
		return components.StatusStreaming
	case m.speaker != nil && m.speaker.SpeakingID() != "":
		return components.StatusSpeaking
	case m.errBanner.Visible():
		return components.StatusError
	default:
		return components.StatusReady
	}
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the message list into the viewport and
// keeps it pinned to the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	msgs := m.st.Messages(m.sessionID)
	if len(msgs) == 0 {
		m.viewport.SetContent(m.theme.ThinkingText.Render(
			"Start a conversation in " + m.mode.Label() + " mode."))
		return
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg model.Message) string {
	body := msg.Text
	if msg.Image != "" {
		tag := m.theme.ImageTag.Render("[image]")
		if body == "" {
			body = tag
		} else {
			body = tag + "\n" + body
		}
	}

	if msg.Role == model.RoleUser {
		bubble := m.theme.UserBubble.Render(body)
		return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, bubble)
	}

	if body == "" {
		// stream placeholder, nothing arrived yet
		return m.spinner.View() + m.theme.ThinkingText.Render(" thinking...")
	}

	if speaking := m.speaker != nil && m.speaker.SpeakingID() == msg.ID; speaking {
		body += "\n" + m.theme.ImageTag.Render("[speaking]")
	}

	if m.renderer != nil && msg.Text != "" {
		if rendered, err := m.renderer.Render(msg.Text); err == nil {
			body = strings.TrimRight(rendered, "\n")
			if msg.Image != "" {
				body = m.theme.ImageTag.Render("[image]") + "\n" + body
			}
		}
	}
	return m.theme.AssistantBubble.Render(body)
}

// =============================================================================
// SESSION LIST OVERLAY
// =============================================================================

func (m *Model) viewSessionList() string {
	sessions := m.st.Sessions()

	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(sessions) == 0 {
		b.WriteString(m.theme.SessionMeta.Render("No saved conversations yet."))
	}

	for i, s := range sessions {
		line := fmt.Sprintf("%s  %s",
			util.TruncateRunes(s.Title, 40),
			s.LastUpdated.Format("Jan 2 15:04"))
		if i == m.sessionIdx {
			b.WriteString(m.theme.SessionItemSelected.Render(line))
		} else {
			b.WriteString(m.theme.SessionItem.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" open  "))
	b.WriteString(m.theme.ShortcutKey.Render("d") + m.theme.ShortcutDesc.Render(" delete  "))
	b.WriteString(m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" back"))
	return b.String()
}
