// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini is the boundary client for the Google generative services:
// streaming chat, speech synthesis, image generation, and speech-to-text
// transcription.
//
// Errors carry a structured kind (authentication, network, empty response)
// so callers never have to parse messages; substring matching is used only
// as a last-resort fallback for unstructured upstream errors.
package gemini
