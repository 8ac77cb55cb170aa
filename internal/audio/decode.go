// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
)

// =============================================================================
// PCM DECODING
// =============================================================================

// Speech clips arrive as base64-encoded 16-bit little-endian PCM, mono,
// at SampleRate. Playback uses float32 samples.
const (
	// SampleRate is the sample rate of synthesized speech.
	SampleRate = 24000

	// ChannelCount is the channel count of synthesized speech.
	ChannelCount = 1
)

// ErrEmptyClip is returned when a decoded clip contains no samples.
var ErrEmptyClip = errors.New("audio clip is empty")

// DecodePCM decodes a base64 speech payload into float32 little-endian
// sample bytes, scaling each int16 frame by 1/32768. A trailing odd byte
// is dropped so only whole frames are converted.
func DecodePCM(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	if len(raw) == 0 {
		return nil, ErrEmptyClip
	}

	out := make([]byte, 0, len(raw)*2)
	for i := 0; i+1 < len(raw); i += 2 {
		frame := int16(binary.LittleEndian.Uint16(raw[i:]))
		sample := float32(frame) / 32768.0
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(sample))
	}
	return out, nil
}
