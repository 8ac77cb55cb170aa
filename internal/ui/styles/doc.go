// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the SM AI Partners
// TUI. All colors use Lip Gloss AdaptiveColor so the palette works on light
// and dark terminals without configuration.
package styles
