// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota implements the usage ledger and the gating facade that
// approves or vetoes constrained actions before orchestration begins.
//
// The ledger tracks daily counters and the premium flag, resetting the
// counters whenever the calendar date rolls over. Quota is consumed on
// attempt, not on successful completion.
package quota
