// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKV_GetMissing(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.Get("absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("absent key should report ok=false")
	}
}

func TestKV_SetGetOverwrite(t *testing.T) {
	db := openTestDB(t)

	if err := db.Set("k", []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := db.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(value) != "v1" {
		t.Errorf("value = %q, want %q", value, "v1")
	}

	if err := db.Set("k", []byte("v2")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, _, _ = db.Get("k")
	if string(value) != "v2" {
		t.Errorf("after overwrite value = %q, want %q", value, "v2")
	}
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Set("k", []byte("durable")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()

	value, ok, err := db2.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = %v, %v", ok, err)
	}
	if string(value) != "durable" {
		t.Errorf("value = %q", value)
	}
}
