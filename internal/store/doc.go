// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable persistence for the application.
//
// State lives in three independent JSON documents inside a small SQLite
// key-value table: the session collection, the usage ledger, and the
// preference flags. Every mutation of the in-memory session collection is
// written through to storage; on startup the collection is rehydrated, and
// malformed stored data is discarded in favor of an empty state rather than
// failing startup.
package store
