// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator runs the send pipeline that connects the session
// store to the Gemini service.
//
// One send is in flight at a time. A send resolves the target session,
// appends the user message, appends an assistant placeholder, then streams
// chunks into the placeholder so every store snapshot taken mid-stream
// shows the text received so far. Cancellation keeps whatever prefix has
// already streamed; a failure before any text arrives replaces the
// placeholder with a fixed apology message.
//
// The orchestrator does not gate quota; callers consult quota.Gate before
// invoking image operations.
package orchestrator
