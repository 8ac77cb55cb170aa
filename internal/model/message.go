// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies who authored a message.
type Role string

const (
	// RoleUser marks a message typed (or dictated) by the user.
	RoleUser Role = "user"

	// RoleModel marks a message produced by the generative service.
	RoleModel Role = "model"
)

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single entry in a chat session.
//
// Identity never changes after creation; only Text mutates while a response
// is streaming (it is replaced wholesale with the accumulated text on each
// chunk, never diffed).
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Image holds base64-encoded JPEG data attached to a user message, or
	// produced by image generation on a model message. Empty when absent.
	Image string `json:"image,omitempty"`
}

// NewUserMessage builds a user message from input text and an optional
// base64-encoded image.
func NewUserMessage(text, image string) Message {
	return Message{
		ID:        newMessageID(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
		Image:     image,
	}
}

// NewModelPlaceholder builds the empty assistant message that is appended
// before the first chunk arrives and filled in place as the stream advances.
func NewModelPlaceholder() Message {
	return Message{
		ID:        newMessageID(),
		Role:      RoleModel,
		Timestamp: time.Now(),
	}
}

// IsEmpty reports whether the message carries neither text nor an image.
// Empty messages are dropped when building the outbound history.
func (m Message) IsEmpty() bool {
	return m.Text == "" && m.Image == ""
}

// newMessageID creates a unique message ID.
func newMessageID() string {
	return "msg_" + uuid.NewString()
}

// =============================================================================
// HISTORY TURNS
// =============================================================================

// Turn is one role/content pair of the outbound conversation history.
type Turn struct {
	Role Role
	Text string
}

// HistoryTurns maps stored messages to outbound turns, dropping entries that
// have neither text nor an image and truncating to the most recent window
// turns. Messages with only an image contribute a textual stand-in so the
// model keeps the conversational slot.
func HistoryTurns(messages []Message, window int) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		if m.IsEmpty() {
			continue
		}
		text := m.Text
		if text == "" {
			text = "Attached Image"
		}
		turns = append(turns, Turn{Role: m.Role, Text: text})
	}
	if window > 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	return turns
}
