// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package quota

import (
	"time"
)

// =============================================================================
// USAGE LEDGER
// =============================================================================

// dateLayout is the calendar-date form stored in the ledger.
const dateLayout = "2006-01-02"

// Ledger is the persisted daily-counter/premium-flag record.
type Ledger struct {
	ImagesSentToday      int    `json:"images_sent_today"`
	ImagesGeneratedToday int    `json:"images_generated_today"`
	LastResetDate        string `json:"last_reset_date"`
	IsPremium            bool   `json:"is_premium"`
}

// rollover zeroes the daily counters when the wall-clock date differs from
// LastResetDate. Returns true when a reset happened. Must run before any
// threshold comparison.
func (l *Ledger) rollover(now time.Time) bool {
	today := now.Format(dateLayout)
	if l.LastResetDate == today {
		return false
	}
	l.ImagesSentToday = 0
	l.ImagesGeneratedToday = 0
	l.LastResetDate = today
	return true
}

// counter returns a pointer to the counter for the given action.
func (l *Ledger) counter(action Action) *int {
	switch action {
	case ActionImageGeneration:
		return &l.ImagesGeneratedToday
	default:
		return &l.ImagesSentToday
	}
}
