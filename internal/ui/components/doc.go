// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the SM AI
// Partners TUI: the status bar, the error banner, and the premium upgrade
// prompt. Components are plain view structs; the chat model owns their
// state transitions.
package components
