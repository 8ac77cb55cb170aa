// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/util"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand executes a /command typed into the input area.
func (m *Model) runCommand(input string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "attach":
		if arg == "" {
			m.notice = "usage: /attach <path-to-image>"
			return nil
		}
		return attachCmd(arg)

	case "detach":
		m.pendingImage = ""
		m.notice = "attachment removed"
		return nil

	case "export":
		return m.exportTranscript(arg)

	case "new":
		m.startNewChat()
		return nil

	case "premium":
		on := !m.gate.Ledger().IsPremium
		m.gate.SetPremium(on)
		if on {
			m.notice = "premium enabled: image limits lifted"
		} else {
			m.notice = "premium disabled"
		}
		return nil

	case "help":
		m.notice = m.helpText()
		return nil

	default:
		m.notice = fmt.Sprintf("unknown command /%s (try /help)", name)
		return nil
	}
}

// exportTranscript writes the active session as a Markdown file.
func (m *Model) exportTranscript(path string) tea.Cmd {
	session, ok := m.st.Get(m.sessionID)
	if !ok || len(session.Messages) == 0 {
		m.notice = "nothing to export yet"
		return nil
	}

	if path == "" {
		path = fmt.Sprintf("chat-%s.md", time.Now().Format("20060102-150405"))
	}

	content := session.ExportMarkdown()
	m.notice = "exported to " + path
	return func() tea.Msg {
		err := util.AtomicWriteFile(path, []byte(content), 0o644)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *Model) helpText() string {
	lines := []string{
		"/attach <path>  attach an image to the next message",
		"/detach         drop the pending attachment",
		"/export [path]  save this conversation as Markdown",
		"/new            start a new conversation",
		"/premium        toggle the premium flag",
		"tab: mode  ctrl+t: deep think  ctrl+s: auto speak  ctrl+v: speak reply",
		"ctrl+r: regenerate  ctrl+l: sessions  ctrl+n: new  esc: cancel",
	}
	return strings.Join(lines, "\n")
}
