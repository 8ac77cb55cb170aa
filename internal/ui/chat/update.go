// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/orchestrator"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all incoming events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case chunkMsg:
		m.refreshTranscript()
		// keep draining
		return m, waitForUpdate(m.updates)

	case sendDoneMsg:
		m.streaming = false
		if msg.err != nil {
			m.errBanner.Show(msg.err)
		}
		if msg.res.SessionID != "" {
			m.sessionID = msg.res.SessionID
		}
		m.refreshTranscript()
		return m, nil

	case attachMsg:
		if msg.err != nil {
			m.errBanner.Show(msg.err)
			return m, nil
		}
		m.pendingImage = msg.data
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.errBanner.Show(msg.err)
		}
		return m, nil

	case speakDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, taCmd, vpCmd)
	return m, tea.Batch(cmds...)
}

// handleKey dispatches the keyboard shortcuts. Returns handled=false for
// keys that should fall through to the textarea.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.sessionsOpen {
		return m.handleSessionListKey(msg), true
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.speaker != nil {
			m.speaker.Stop()
		}
		return tea.Quit, true

	case key.Matches(msg, m.keys.Cancel):
		m.notice = ""
		switch {
		case m.errBanner.Visible():
			m.errBanner.Hide()
		case m.upgrade.Visible():
			m.upgrade.Hide()
		case m.streaming:
			m.orch.Cancel()
		case m.speaker != nil && m.speaker.SpeakingID() != "":
			m.speaker.Stop()
		}
		return nil, true

	case key.Matches(msg, m.keys.Send):
		return m.submit(), true

	case key.Matches(msg, m.keys.NewChat):
		m.startNewChat()
		return nil, true

	case key.Matches(msg, m.keys.CycleMode):
		m.cycleMode()
		return nil, true

	case key.Matches(msg, m.keys.DeepThink):
		m.deepThink = !m.deepThink
		m.savePrefs()
		return nil, true

	case key.Matches(msg, m.keys.AutoSpeak):
		m.autoSpeak = !m.autoSpeak
		m.savePrefs()
		return nil, true

	case key.Matches(msg, m.keys.SpeakLast):
		return m.speakLastReply(), true

	case key.Matches(msg, m.keys.Regenerate):
		if m.streaming || m.sessionID == "" {
			return nil, true
		}
		m.streaming = true
		return tea.Batch(
			regenerateCmd(m.orch, m.sessionID, orchestrator.SendOptions{
				Mode:      m.mode,
				DeepThink: m.deepThink,
				AutoSpeak: m.autoSpeak,
			}),
			waitForUpdate(m.updates),
		), true

	case key.Matches(msg, m.keys.Sessions):
		m.sessionsOpen = true
		m.sessionIdx = 0
		return nil, true

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return nil, true

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return nil, true
	}

	return nil, false
}

// submit validates and dispatches the composed message.
func (m *Model) submit() tea.Cmd {
	if m.streaming {
		return nil
	}

	text := strings.TrimSpace(m.textarea.Value())
	m.notice = ""
	if strings.HasPrefix(text, "/") {
		m.textarea.Reset()
		return m.runCommand(text)
	}
	if text == "" && m.pendingImage == "" {
		return nil
	}

	if action, gated := m.quotaAction(); gated {
		decision := m.gate.Check(action)
		if !decision.Allowed {
			m.upgrade.Show(action, m.gate.Limit(action))
			return nil
		}
	}

	opts := orchestrator.SendOptions{
		SessionID: m.sessionID,
		Prompt:    text,
		Image:     m.pendingImage,
		Mode:      m.mode,
		DeepThink: m.deepThink,
		AutoSpeak: m.autoSpeak,
	}

	m.textarea.Reset()
	m.pendingImage = ""
	m.streaming = true
	m.errBanner.Hide()

	return tea.Batch(sendCmd(m.orch, opts), waitForUpdate(m.updates))
}

// startNewChat clears the active session so the next send creates one.
func (m *Model) startNewChat() {
	if m.streaming {
		return
	}
	m.sessionID = ""
	m.pendingImage = ""
	m.refreshTranscript()
}

// cycleMode advances education -> coding -> image studio. A mode switch
// starts a fresh conversation; mixing modes in one transcript confuses the
// system instruction.
func (m *Model) cycleMode() {
	if m.streaming {
		return
	}
	switch m.mode {
	case model.ModeEducation:
		m.mode = model.ModeCoding
	case model.ModeCoding:
		m.mode = model.ModeImage
	default:
		m.mode = model.ModeEducation
	}
	m.startNewChat()
}

// speakLastReply toggles speech for the newest assistant message.
func (m *Model) speakLastReply() tea.Cmd {
	if m.speaker == nil || m.sessionID == "" {
		return nil
	}
	msgs := m.st.Messages(m.sessionID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleModel && msgs[i].Text != "" {
			return speakCmd(m.speaker, msgs[i].Text, msgs[i].ID)
		}
	}
	return nil
}

// handleSessionListKey drives the session picker overlay.
func (m *Model) handleSessionListKey(msg tea.KeyMsg) tea.Cmd {
	sessions := m.st.Sessions()

	switch msg.String() {
	case "esc", "ctrl+l":
		m.sessionsOpen = false
	case "up", "k":
		if m.sessionIdx > 0 {
			m.sessionIdx--
		}
	case "down", "j":
		if m.sessionIdx < len(sessions)-1 {
			m.sessionIdx++
		}
	case "enter":
		if m.sessionIdx < len(sessions) {
			m.sessionID = sessions[m.sessionIdx].ID
			m.st.SetActive(m.sessionID)
			m.refreshTranscript()
		}
		m.sessionsOpen = false
	case "d":
		if m.sessionIdx < len(sessions) {
			deleted := sessions[m.sessionIdx].ID
			m.st.DeleteSession(deleted)
			if m.sessionID == deleted {
				m.sessionID = ""
			}
			if m.sessionIdx > 0 {
				m.sessionIdx--
			}
			m.refreshTranscript()
		}
	}
	return nil
}

// resize recomputes the layout and rebuilds the markdown renderer for the
// new wrap width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.statusBar.Width = width

	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	inputHeight := 5  // bordered textarea
	chromeHeight := 3 // header + status bar
	vpHeight := height - inputHeight - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = newViewport(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(contentWidth-8),
	)
	if err != nil {
		m.log.Warnf("markdown renderer init failed: %v", err)
	} else {
		m.renderer = renderer
	}

	m.refreshTranscript()
}
