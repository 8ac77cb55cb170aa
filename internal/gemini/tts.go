// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/base64"
	"strings"

	"google.golang.org/genai"
)

// =============================================================================
// SPEECH SYNTHESIS
// =============================================================================

// SpeechSampleRate is the PCM sample rate of synthesized audio in Hz.
const SpeechSampleRate = 24000

// Synthesize turns text into speech and returns the payload as
// base64-encoded signed 16-bit little-endian PCM, mono, at
// SpeechSampleRate. Markdown markup is stripped and the text is capped at
// maxChars before it is sent.
func (c *Client) Synthesize(ctx context.Context, text string, maxChars int) (string, error) {
	if err := c.waitTurn(ctx); err != nil {
		return "", err
	}

	text = StripMarkup(text)
	if maxChars > 0 {
		runes := []rune(text)
		if len(runes) > maxChars {
			text = string(runes[:maxChars])
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.cfg.Voice,
				},
			},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.TTSModel, genai.Text(text), cfg)
	if err != nil {
		return "", wrap("speech synthesis failed", err)
	}

	data := firstAudioPayload(resp)
	if len(data) == 0 {
		return "", ErrEmptyResponse
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// firstAudioPayload walks the response for the first inline audio blob.
func firstAudioPayload(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}

// StripMarkup removes common Markdown decoration so it is not read aloud.
func StripMarkup(text string) string {
	replacer := strings.NewReplacer(
		"**", "",
		"__", "",
		"```", "",
		"`", "",
		"*", "",
		"#", "",
		"> ", "",
	)
	return strings.TrimSpace(replacer.Replace(text))
}
