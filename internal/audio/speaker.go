// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"context"
	"sync"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
)

// =============================================================================
// PLAYBACK ABSTRACTION
// =============================================================================

// Playback is a handle to one in-flight clip.
type Playback interface {
	// Stop halts playback. Safe to call more than once.
	Stop()
}

// Sink starts playback of a PCM clip. Play must not block; done is invoked
// exactly once when the clip finishes on its own (not when stopped).
type Sink interface {
	Play(pcm []byte, done func()) (Playback, error)
}

// Synthesizer turns text into a base64 PCM speech payload.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, maxChars int) (string, error)
}

// =============================================================================
// SPEAKER
// =============================================================================

// Speaker drives the speech pipeline for chat messages. At most one clip
// plays at a time; the speaker tracks which message it belongs to so the
// UI can render a speaking indicator.
type Speaker struct {
	mu sync.Mutex

	synth    Synthesizer
	sink     Sink
	log      logging.Logger
	maxChars int

	// activeID is set as soon as a Speak call claims the speaker, before
	// synthesis starts; active is non-nil only once the clip is playing.
	// A later Speak or Stop that clears activeID makes the in-flight call
	// abandon its result, so at most one source is ever audible.
	activeID string
	active   Playback
}

// NewSpeaker builds a speaker over the given synthesizer and sink.
func NewSpeaker(synth Synthesizer, sink Sink, maxChars int, log logging.Logger) *Speaker {
	if log == nil {
		log = logging.Nop()
	}
	return &Speaker{
		synth:    synth,
		sink:     sink,
		log:      log,
		maxChars: maxChars,
	}
}

// Speak toggles speech for a message. If the message is already playing,
// playback stops and nothing new starts. Otherwise any current clip is
// replaced. Failures are logged and leave the speaker idle; the user just
// hears nothing.
func (s *Speaker) Speak(ctx context.Context, text, messageID string) {
	s.mu.Lock()
	if s.activeID == messageID {
		// Toggle off, whether the clip is playing or still synthesizing.
		s.stopLocked()
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.activeID = messageID
	s.mu.Unlock()

	payload, err := s.synth.Synthesize(ctx, text, s.maxChars)
	if err != nil {
		s.log.Warnf("speech synthesis failed: %v", err)
		s.clear(messageID)
		return
	}
	pcm, err := DecodePCM(payload)
	if err != nil {
		s.log.Warnf("speech clip decode failed: %v", err)
		s.clear(messageID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID != messageID {
		// Superseded or toggled off during synthesis; drop the stale clip.
		return
	}

	playback, err := s.sink.Play(pcm, func() { s.clear(messageID) })
	if err != nil {
		s.log.Warnf("speech playback failed: %v", err)
		s.activeID = ""
		return
	}
	s.active = playback
}

// Stop halts any current playback. Safe to call when idle.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// SpeakingID returns the ID of the message being spoken, or "". A message
// counts as speaking from the moment synthesis starts.
func (s *Speaker) SpeakingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// clear resets the speaker after natural end of playback or a failed
// pipeline stage, but only if messageID still owns the speaker.
func (s *Speaker) clear(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == messageID {
		s.active = nil
		s.activeID = ""
	}
}

func (s *Speaker) stopLocked() {
	if s.active != nil {
		s.active.Stop()
		s.active = nil
	}
	s.activeID = ""
}
