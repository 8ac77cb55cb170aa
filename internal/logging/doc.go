// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the application logger.
//
// The TUI owns stdout, so by default log records go to a file under the
// application data directory. The package exposes a minimal interface so
// components can be handed a no-op logger in tests.
package logging
