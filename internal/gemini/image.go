// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/base64"

	"google.golang.org/genai"
)

// =============================================================================
// IMAGE GENERATION
// =============================================================================

// GenerateImage renders a still image from the prompt and returns it as
// base64-encoded image data suitable for the Message.Image field.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := c.waitTurn(ctx); err != nil {
		return "", err
	}

	resp, err := c.genai.Models.GenerateImages(ctx, c.cfg.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", wrap("image generation failed", err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 ||
		resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", ErrEmptyResponse
	}

	return base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes), nil
}
