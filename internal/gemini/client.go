// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/base64"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
)

// =============================================================================
// SYSTEM INSTRUCTIONS
// =============================================================================

const educationInstruction = `
You are "SM AI Partner", a world-class educational AI assistant created by SM Gaming Studio.
Your goal is to help students with Math, Science, Coding, Islamic Studies (Islamiyat), and general academic subjects.

CORE PRINCIPLES:
1. Be professional, encouraging, and academically rigorous.
2. Provide step-by-step explanations for complex problems (especially Math and Science).
3. If the user speaks in Urdu, Roman Urdu, or Sindhi, reply in the same language.
4. For Islamiyat questions, provide authentic and respectful information.
5. Keep responses clear, well-formatted using Markdown, and easy to read for students.
6. Encourage critical thinking - don't just give answers; explain the 'why'.
`

const codingInstruction = `
You are "SM AI Partner", a senior software engineering assistant created by SM Gaming Studio.
Help students learn to program: explain concepts, review code, and debug step by step.
Prefer idiomatic, well-commented examples and always explain the reasoning behind a fix.
Reply in the language the user writes in, including Urdu, Roman Urdu, or Sindhi.
`

// =============================================================================
// CLIENT
// =============================================================================

// Config holds the client settings.
type Config struct {
	// APIKey is the Gemini credential. Required.
	APIKey string
	// TextModel is the default streaming chat model.
	TextModel string
	// DeepModel is used when deep reasoning is requested.
	DeepModel string
	// TTSModel is the speech-synthesis model.
	TTSModel string
	// ImageModel is the image-generation model.
	ImageModel string
	// Voice is the prebuilt voice name for speech synthesis.
	Voice string
	// RequestsPerMinute caps outbound calls (0 = no limit).
	RequestsPerMinute int
}

// Client talks to the Gemini API. It is safe for concurrent use.
type Client struct {
	cfg     Config
	genai   *genai.Client
	limiter *rate.Limiter
}

// NewClient validates the credential and builds the API client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, wrap("failed to create Gemini client", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &Client{cfg: cfg, genai: gc, limiter: limiter}, nil
}

// waitTurn blocks until the rate limiter permits another outbound call.
func (c *Client) waitTurn(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return wrap("rate limit wait interrupted", err)
	}
	return nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatRequest describes one streaming exchange.
type ChatRequest struct {
	// Prompt is the user's text for the final turn.
	Prompt string
	// ImageJPEG is optional inline JPEG data attached to the final turn.
	ImageJPEG []byte
	// History is the prior conversation, most recent last.
	History []model.Turn
	// DeepThink selects the deep-reasoning model and thinking budget.
	DeepThink bool
	// Mode selects the assistant persona.
	Mode model.Mode
}

// StreamChat opens a streaming exchange and calls onChunk for each text
// fragment, in arrival order, until the stream completes. Returns a
// classified ServiceError on failure.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, onChunk func(text string)) error {
	if err := c.waitTurn(ctx); err != nil {
		return err
	}

	modelName := c.cfg.TextModel
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instructionFor(req.Mode)}},
		},
		Temperature: genai.Ptr[float32](0.7),
	}
	if req.DeepThink {
		modelName = c.cfg.DeepModel
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](4000),
		}
	}

	contents := buildContents(req)

	for resp, err := range c.genai.Models.GenerateContentStream(ctx, modelName, contents, cfg) {
		if err != nil {
			return wrap("stream request failed", err)
		}
		if text := resp.Text(); text != "" {
			onChunk(text)
		}
	}

	return nil
}

// instructionFor returns the system instruction for the mode.
func instructionFor(mode model.Mode) string {
	if mode == model.ModeCoding {
		return codingInstruction
	}
	return educationInstruction
}

// buildContents maps the sanitized history plus the final user turn into
// the outbound request. History entries with blank text were already
// dropped upstream; this guards again anyway.
func buildContents(req ChatRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		if turn.Text == "" {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  string(turn.Role),
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}

	var parts []*genai.Part
	if len(req.ImageJPEG) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: req.ImageJPEG},
		})
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "Hi"
	}
	parts = append(parts, &genai.Part{Text: prompt})

	return append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
}

// DecodeImage decodes the base64 payload a user attaches to a message,
// tolerating data-URL prefixes from capture surfaces.
func DecodeImage(data string) ([]byte, error) {
	if idx := strings.Index(data, "base64,"); idx >= 0 {
		data = data[idx+len("base64,"):]
	}
	return base64.StdEncoding.DecodeString(data)
}
