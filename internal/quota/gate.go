// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package quota

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
)

// =============================================================================
// ACTIONS AND DECISIONS
// =============================================================================

// Action identifies a constrained action type with its own daily counter.
type Action int

const (
	// ActionImageUpload is an image-bearing chat request.
	ActionImageUpload Action = iota

	// ActionImageGeneration is a generate-image request.
	ActionImageGeneration
)

// Decision is the outcome of a gate check.
type Decision struct {
	// Allowed is true when the action may proceed.
	Allowed bool

	// ShowUpgrade signals the UI to show the premium upgrade prompt in
	// place of running the action.
	ShowUpgrade bool

	// Remaining is how many more actions of this type today's quota
	// permits after this decision (premium ledgers report -1: unlimited).
	Remaining int
}

// Limits carries the per-action daily thresholds.
type Limits struct {
	ImageUpload     int
	ImageGeneration int
}

// =============================================================================
// GATE
// =============================================================================

// Gate composes the usage ledger with per-action limits to approve or veto
// a constrained action before the orchestrator runs. The ledger is loaded
// from storage at construction and written through after every change.
type Gate struct {
	mu     sync.Mutex
	kv     store.KV
	log    logging.Logger
	limits Limits
	ledger Ledger

	// now is swappable for date-rollover tests.
	now func() time.Time
}

// NewGate loads the persisted ledger (malformed or missing data yields a
// fresh ledger) and returns the gating facade.
func NewGate(kv store.KV, limits Limits, log logging.Logger) *Gate {
	if log == nil {
		log = logging.Nop()
	}
	g := &Gate{kv: kv, log: log, limits: limits, now: time.Now}

	data, ok, err := kv.Get(store.KeyUsage)
	if err != nil {
		log.Warnf("usage ledger read failed: %v", err)
		return g
	}
	if !ok {
		return g
	}
	if err := json.Unmarshal(data, &g.ledger); err != nil {
		log.Warnf("discarding malformed usage ledger: %v", err)
		g.ledger = Ledger{}
	}
	return g
}

// Check decides whether the constrained action may proceed. Daily counters
// are rolled over first; premium bypasses the numeric thresholds entirely.
// On approval the counter is consumed immediately (quota is spent on
// attempt, not on success) and the ledger is persisted.
func (g *Gate) Check(action Action) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	rolled := g.ledger.rollover(g.now())

	counter := g.ledger.counter(action)
	limit := g.limit(action)

	if g.ledger.IsPremium {
		*counter++
		g.persistLocked()
		return Decision{Allowed: true, Remaining: -1}
	}

	if *counter >= limit {
		if rolled {
			g.persistLocked()
		}
		return Decision{ShowUpgrade: true, Remaining: 0}
	}

	*counter++
	g.persistLocked()
	return Decision{Allowed: true, Remaining: limit - *counter}
}

// Ledger returns a copy of the current ledger after applying rollover.
func (g *Gate) Ledger() Ledger {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ledger.rollover(g.now()) {
		g.persistLocked()
	}
	return g.ledger
}

// SetLimits swaps the thresholds, e.g. after a config reload. Counters
// are untouched; only future comparisons change.
func (g *Gate) SetLimits(limits Limits) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limits = limits
}

// Remaining reports how many actions of this type today's quota still
// permits, without consuming one. Premium reports -1 (unlimited).
func (g *Gate) Remaining(action Action) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ledger.rollover(g.now()) {
		g.persistLocked()
	}
	if g.ledger.IsPremium {
		return -1
	}
	remaining := g.limit(action) - *g.ledger.counter(action)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetPremium flips the premium flag and persists the ledger.
func (g *Gate) SetPremium(premium bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ledger.IsPremium = premium
	g.persistLocked()
}

// Limit returns the configured daily threshold for the given action.
func (g *Gate) Limit(action Action) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit(action)
}

// limit returns the threshold for the given action.
func (g *Gate) limit(action Action) int {
	switch action {
	case ActionImageGeneration:
		return g.limits.ImageGeneration
	default:
		return g.limits.ImageUpload
	}
}

// persistLocked writes the ledger through to storage. Caller must hold the
// mutex.
func (g *Gate) persistLocked() {
	data, err := json.Marshal(g.ledger)
	if err != nil {
		g.log.Errorf("failed to marshal usage ledger: %v", err)
		return
	}
	if err := g.kv.Set(store.KeyUsage, data); err != nil {
		g.log.Errorf("failed to persist usage ledger: %v", err)
	}
}
