// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the application:
// crash-safe file writes and rune-aware string truncation.
package util
