// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/base64"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/orchestrator"
)

// =============================================================================
// TEA MESSAGES
// =============================================================================

// chunkMsg carries one orchestrator update out of the stream goroutine.
type chunkMsg orchestrator.Update

// sendDoneMsg is the terminal result of a send or regenerate.
type sendDoneMsg struct {
	res orchestrator.Result
	err error
}

// attachMsg carries a loaded image attachment, or the load failure.
type attachMsg struct {
	data string // base64 JPEG
	err  error
}

// exportDoneMsg reports the outcome of a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}

// speakDoneMsg fires when a manual speak request returns.
type speakDoneMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForUpdate blocks on the orchestrator update channel. Re-issued after
// every chunkMsg so the channel is drained for the whole session.
func waitForUpdate(ch <-chan orchestrator.Update) tea.Cmd {
	return func() tea.Msg {
		return chunkMsg(<-ch)
	}
}

// sendCmd runs one blocking send in a goroutine.
func sendCmd(orch *orchestrator.Orchestrator, opts orchestrator.SendOptions) tea.Cmd {
	return func() tea.Msg {
		res, err := orch.Send(context.Background(), opts)
		return sendDoneMsg{res: res, err: err}
	}
}

// regenerateCmd replays the last user message of a session.
func regenerateCmd(orch *orchestrator.Orchestrator, sessionID string, opts orchestrator.SendOptions) tea.Cmd {
	return func() tea.Msg {
		res, err := orch.Regenerate(context.Background(), sessionID, opts)
		return sendDoneMsg{res: res, err: err}
	}
}

// attachCmd loads an image file and base64-encodes it for sending.
func attachCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return attachMsg{err: err}
		}
		return attachMsg{data: base64.StdEncoding.EncodeToString(data)}
	}
}

// speakCmd toggles speech for one message. Synthesis blocks, so it runs as
// a command.
func speakCmd(speaker speakToggler, text, messageID string) tea.Cmd {
	return func() tea.Msg {
		speaker.Speak(context.Background(), text, messageID)
		return speakDoneMsg{}
	}
}

// speakToggler is the slice of audio.Speaker the view needs.
type speakToggler interface {
	Speak(ctx context.Context, text, messageID string)
	Stop()
	SpeakingID() string
}
