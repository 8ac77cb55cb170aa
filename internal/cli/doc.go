// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the command line and implements the non-TUI
// subcommands: one-shot asks, session listing, and transcript export.
package cli
