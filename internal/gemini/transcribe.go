// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// =============================================================================
// SPEECH-TO-TEXT
// =============================================================================

const transcribePrompt = "Transcribe this audio clip verbatim. " +
	"Reply with the transcript only, no commentary."

// Transcribe turns a captured audio clip into one transcript string, which
// the caller feeds back in as if it had been typed.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if err := c.waitTurn(ctx); err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", ErrEmptyResponse
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
			{Text: transcribePrompt},
		},
	}}

	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.TextModel, contents, nil)
	if err != nil {
		return "", wrap("transcription failed", err)
	}

	transcript := strings.TrimSpace(resp.Text())
	if transcript == "" {
		return "", ErrEmptyResponse
	}
	return transcript, nil
}
