// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package quota

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
)

func testGate(t *testing.T) (*Gate, store.KV) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "quota.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	limits := Limits{ImageUpload: 3, ImageGeneration: 3}
	return NewGate(db, limits, logging.Nop()), db
}

func TestCheck_ThresholdScenario(t *testing.T) {
	// Empty ledger, non-premium, threshold = 3: three image sends succeed
	// (counter 0 -> 1 -> 2 -> 3), the fourth is vetoed.
	g, _ := testGate(t)

	for i := 1; i <= 3; i++ {
		d := g.Check(ActionImageUpload)
		assert.True(t, d.Allowed, "send %d should be approved", i)
		assert.Equal(t, i, g.Ledger().ImagesSentToday)
	}

	d := g.Check(ActionImageUpload)
	assert.False(t, d.Allowed, "fourth send must be vetoed")
	assert.True(t, d.ShowUpgrade, "veto must signal the upgrade prompt")
	assert.Equal(t, 3, g.Ledger().ImagesSentToday, "veto must not consume quota")
}

func TestCheck_CountersAreIndependent(t *testing.T) {
	g, _ := testGate(t)

	for i := 0; i < 3; i++ {
		g.Check(ActionImageUpload)
	}
	d := g.Check(ActionImageGeneration)
	assert.True(t, d.Allowed, "generation counter is separate from upload counter")
}

func TestCheck_PremiumBypassesThresholds(t *testing.T) {
	g, _ := testGate(t)
	g.SetPremium(true)

	for i := 0; i < 10; i++ {
		d := g.Check(ActionImageUpload)
		assert.True(t, d.Allowed)
		assert.Equal(t, -1, d.Remaining)
	}
}

func TestCheck_DateRolloverResetsBeforeComparison(t *testing.T) {
	g, _ := testGate(t)

	// Exhaust yesterday's quota.
	yesterday := time.Now().AddDate(0, 0, -1)
	g.now = func() time.Time { return yesterday }
	for i := 0; i < 3; i++ {
		require.True(t, g.Check(ActionImageUpload).Allowed)
	}
	require.False(t, g.Check(ActionImageUpload).Allowed)

	// Today the counters reset to zero before any threshold comparison.
	g.now = time.Now
	d := g.Check(ActionImageUpload)
	assert.True(t, d.Allowed, "new day must approve again")
	assert.Equal(t, 1, g.Ledger().ImagesSentToday)
}

func TestLedger_RolloverOnRead(t *testing.T) {
	g, _ := testGate(t)

	yesterday := time.Now().AddDate(0, 0, -1)
	g.now = func() time.Time { return yesterday }
	g.Check(ActionImageUpload)
	g.Check(ActionImageGeneration)

	g.now = time.Now
	ledger := g.Ledger()
	assert.Equal(t, 0, ledger.ImagesSentToday)
	assert.Equal(t, 0, ledger.ImagesGeneratedToday)
	assert.Equal(t, time.Now().Format("2006-01-02"), ledger.LastResetDate)
}

func TestGate_LedgerPersistsAcrossConstruction(t *testing.T) {
	g, kv := testGate(t)
	g.Check(ActionImageUpload)
	g.Check(ActionImageUpload)
	g.SetPremium(true)

	g2 := NewGate(kv, Limits{ImageUpload: 3, ImageGeneration: 3}, logging.Nop())
	ledger := g2.Ledger()
	assert.Equal(t, 2, ledger.ImagesSentToday)
	assert.True(t, ledger.IsPremium)
}

func TestGate_MalformedLedgerFallsBackToFresh(t *testing.T) {
	_, kv := testGate(t)
	require.NoError(t, kv.Set(store.KeyUsage, []byte("{broken")))

	g := NewGate(kv, Limits{ImageUpload: 3, ImageGeneration: 3}, logging.Nop())
	assert.Equal(t, 0, g.Ledger().ImagesSentToday)
	assert.True(t, g.Check(ActionImageUpload).Allowed)
}

func TestLedger_SerializedShape(t *testing.T) {
	// The persisted document keeps the historical field names so existing
	// installs keep their counts.
	data, err := json.Marshal(Ledger{ImagesSentToday: 2, LastResetDate: "2026-09-01"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"images_sent_today":2,"images_generated_today":0,"last_reset_date":"2026-09-01","is_premium":false}`,
		string(data))
}

func TestRemaining_DoesNotConsume(t *testing.T) {
	g, _ := testGate(t)

	assert.Equal(t, 3, g.Remaining(ActionImageGeneration))
	assert.Equal(t, 3, g.Remaining(ActionImageGeneration), "reads must not consume quota")

	g.Check(ActionImageGeneration)
	assert.Equal(t, 2, g.Remaining(ActionImageGeneration))

	g.SetPremium(true)
	assert.Equal(t, -1, g.Remaining(ActionImageGeneration), "premium reports unlimited")
}

func TestSetLimits_AppliesWithoutTouchingCounters(t *testing.T) {
	g, _ := testGate(t)

	g.Check(ActionImageUpload)
	g.Check(ActionImageUpload)
	g.Check(ActionImageUpload)
	require.False(t, g.Check(ActionImageUpload).Allowed)

	g.SetLimits(Limits{ImageUpload: 5, ImageGeneration: 5})
	assert.Equal(t, 5, g.Limit(ActionImageUpload))
	assert.True(t, g.Check(ActionImageUpload).Allowed, "raised limit admits further sends")
	assert.Equal(t, 4, g.Ledger().ImagesSentToday, "existing counters survive a limit change")
}
