// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesLeveledJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf)

	log.Info("storage opened")
	log.Debug("should be filtered")

	out := buf.String()
	if !strings.Contains(out, "storage opened") {
		t.Errorf("info record missing: %q", out)
	}
	if !strings.Contains(out, `"level"`) {
		t.Errorf("output is not structured: %q", out)
	}
	if strings.Contains(out, "should be filtered") {
		t.Errorf("debug record leaked at info level: %q", out)
	}
}

func TestNew_FormattedRecords(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.Warnf("retry %d of %d", 2, 3)
	if !strings.Contains(buf.String(), "retry 2 of 3") {
		t.Errorf("formatted record missing: %q", buf.String())
	}
}

func TestOpenFile_FallsBackToNop(t *testing.T) {
	// A path whose parent cannot be created must not panic or error.
	log := OpenFile("info", string([]byte{0}))
	log.Info("goes nowhere")
}

func TestOpenFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	log := OpenFile("info", path)
	log.Info("hello")

	if _, ok := log.(nopLogger); ok {
		t.Fatal("expected a real logger for a writable path")
	}
}
