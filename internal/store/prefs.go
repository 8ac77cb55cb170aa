// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
)

// =============================================================================
// PREFERENCE FLAGS
// =============================================================================

// Prefs holds the small set of scalar preference flags persisted under their
// own storage key.
type Prefs struct {
	// Dark selects the dark theme.
	Dark bool `json:"dark"`
	// AutoSpeak speaks every completed assistant message aloud.
	AutoSpeak bool `json:"auto_speak"`
	// DeepThink requests deep reasoning on every send.
	DeepThink bool `json:"deep_think"`
}

// LoadPrefs reads the preference flags from storage. Missing or malformed
// data yields the zero-value defaults; loading never fails.
func LoadPrefs(kv KV) Prefs {
	var p Prefs
	data, ok, err := kv.Get(KeyPrefs)
	if err != nil || !ok {
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}
	}
	return p
}

// SavePrefs writes the preference flags to storage.
func SavePrefs(kv KV, p Prefs) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return kv.Set(KeyPrefs, data)
}
