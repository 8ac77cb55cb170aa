// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/gemini"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/orchestrator"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/quota"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/ui/styles"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type stubService struct {
	streamCalls int
	imageCalls  int
}

func (s *stubService) StreamChat(_ context.Context, _ gemini.ChatRequest, onChunk func(string)) error {
	s.streamCalls++
	onChunk("stub reply")
	return nil
}

func (s *stubService) GenerateImage(context.Context, string) (string, error) {
	s.imageCalls++
	return "c3R1Yg==", nil
}

func newTestModel(t *testing.T) (*Model, *stubService, *quota.Gate) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.NewSessionStore(db, nil)
	svc := &stubService{}
	orch := orchestrator.New(st, svc, nil, 10, nil)
	gate := quota.NewGate(db, quota.Limits{ImageUpload: 2, ImageGeneration: 2}, nil)

	m := New(Options{
		Theme: styles.NewTheme(),
		Store: st,
		Orch:  orch,
		Gate:  gate,
	})
	m.resize(100, 40)
	return m, svc, gate
}

// =============================================================================
// MODE AND TOGGLE TESTS
// =============================================================================

func TestCycleMode_StartsFreshConversation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.sessionID = "sess_active"

	m.cycleMode()
	if m.mode != model.ModeCoding {
		t.Errorf("mode = %v, want coding", m.mode)
	}
	if m.sessionID != "" {
		t.Error("mode switch should clear the active session")
	}

	m.cycleMode()
	m.cycleMode()
	if m.mode != model.ModeEducation {
		t.Errorf("mode should cycle back to education, got %v", m.mode)
	}
}

func TestQuotaAction_Mapping(t *testing.T) {
	m, _, _ := newTestModel(t)

	if _, gated := m.quotaAction(); gated {
		t.Error("plain text send must not be gated")
	}

	m.pendingImage = "aGk="
	if action, gated := m.quotaAction(); !gated || action != quota.ActionImageUpload {
		t.Errorf("attachment should gate as upload, got %v/%v", action, gated)
	}

	m.pendingImage = ""
	m.mode = model.ModeImage
	if action, gated := m.quotaAction(); !gated || action != quota.ActionImageGeneration {
		t.Errorf("image mode should gate as generation, got %v/%v", action, gated)
	}
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_QuotaVetoShowsUpgradeWithoutSending(t *testing.T) {
	m, svc, gate := newTestModel(t)
	m.mode = model.ModeImage

	gate.Check(quota.ActionImageGeneration)
	gate.Check(quota.ActionImageGeneration)

	m.textarea.SetValue("one image too many")
	cmd := m.submit()

	if cmd != nil {
		t.Error("vetoed send should not dispatch a command")
	}
	if !m.upgrade.Visible() {
		t.Error("exhausted quota should raise the upgrade prompt")
	}
	if m.streaming {
		t.Error("vetoed send must not enter streaming state")
	}
	if svc.imageCalls != 0 {
		t.Error("vetoed send must not reach the service")
	}
}

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.textarea.SetValue("   ")
	if cmd := m.submit(); cmd != nil {
		t.Error("blank input should not dispatch")
	}
	if m.streaming {
		t.Error("blank input must not enter streaming state")
	}
}

func TestSubmit_DispatchesAndClearsComposer(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.textarea.SetValue("hello")
	m.pendingImage = ""
	cmd := m.submit()

	if cmd == nil {
		t.Fatal("valid input should dispatch a command")
	}
	if !m.streaming {
		t.Error("dispatch should enter streaming state")
	}
	if m.textarea.Value() != "" {
		t.Error("composer should be cleared on dispatch")
	}
}

func TestSubmit_RejectedWhileStreaming(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.streaming = true

	m.textarea.SetValue("impatient")
	if cmd := m.submit(); cmd != nil {
		t.Error("send during streaming should be ignored")
	}
	if m.textarea.Value() != "impatient" {
		t.Error("rejected input should stay in the composer")
	}
}

// =============================================================================
// SLASH COMMAND TESTS
// =============================================================================

func TestRunCommand_PremiumToggle(t *testing.T) {
	m, _, gate := newTestModel(t)

	m.runCommand("/premium")
	if !gate.Ledger().IsPremium {
		t.Error("/premium should enable the premium flag")
	}
	m.runCommand("/premium")
	if gate.Ledger().IsPremium {
		t.Error("second /premium should disable the flag")
	}
}

func TestRunCommand_Unknown(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.runCommand("/frobnicate")
	if !strings.Contains(m.notice, "unknown command") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestRunCommand_ExportWithoutMessages(t *testing.T) {
	m, _, _ := newTestModel(t)

	if cmd := m.runCommand("/export"); cmd != nil {
		t.Error("empty session should not produce an export command")
	}
	if !strings.Contains(m.notice, "nothing to export") {
		t.Errorf("notice = %q", m.notice)
	}
}
