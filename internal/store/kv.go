// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// KV INTERFACE
// =============================================================================

// KV is the durable key-value surface the rest of the application writes
// through. Values are whole JSON documents; keys name the document.
type KV interface {
	// Get returns the value for key, with ok=false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// Storage keys for the three persisted documents.
const (
	KeySessions = "sessions"
	KeyUsage    = "usage"
	KeyPrefs    = "prefs"
)

// =============================================================================
// SQLITE-BACKED KV
// =============================================================================

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// DB is the SQLite-backed KV implementation.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Get returns the value stored under key.
func (d *DB) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := d.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (d *DB) Set(key string, value []byte) error {
	_, err := d.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
