// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MODES
// =============================================================================

// Mode selects the assistant persona for a send action.
type Mode string

const (
	// ModeEducation is the default tutoring persona.
	ModeEducation Mode = "education"

	// ModeCoding is the code-assist persona.
	ModeCoding Mode = "coding"

	// ModeImage generates a still image from the prompt.
	ModeImage Mode = "image"
)

// Label returns the display label used as a fallback session title.
func (m Mode) Label() string {
	switch m {
	case ModeCoding:
		return "Coding Chat"
	case ModeImage:
		return "Image Studio"
	default:
		return "Education Chat"
	}
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is a titled, ordered conversation thread.
//
// The session store exclusively owns the collection of sessions; nothing
// else mutates a session's message list directly.
type ChatSession struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewChatSession creates an empty session titled from the seed text, or from
// the mode label when the seed is blank.
func NewChatSession(seedText string, mode Mode) *ChatSession {
	return &ChatSession{
		ID:          "sess_" + uuid.NewString(),
		Title:       DeriveTitle(seedText, mode),
		Messages:    []Message{},
		LastUpdated: time.Now(),
	}
}

// DeriveTitle builds a short display title from the first user message,
// falling back to the mode label when the text is blank.
func DeriveTitle(text string, mode Mode) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return mode.Label()
	}
	// Rune-based truncation for Unicode safety.
	runes := []rune(text)
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return text
}

// LastUserMessage returns the most recent user message, or false when the
// session has none. Used by regenerate.
func (s *ChatSession) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the session as a Markdown document with role labels
// and timestamps.
func (s *ChatSession) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + s.Title + "\n\n")
	sb.WriteString("Updated: " + s.LastUpdated.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		role := "**User**"
		if msg.Role == RoleModel {
			role = "**SM AI Partner**"
		}
		sb.WriteString(role + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Text)
		if msg.Image != "" {
			sb.WriteString("\n\n*(attached image)*")
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
