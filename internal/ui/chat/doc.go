// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea view: the transcript
// viewport, the input area, mode and toggle handling, and the slash
// commands.
//
// The model never talks to the Gemini API directly. Sends run through the
// orchestrator in a command goroutine; streamed chunks arrive through a
// buffered update channel that the model drains with a recurring wait
// command, so the event loop stays responsive while text streams in.
package chat
