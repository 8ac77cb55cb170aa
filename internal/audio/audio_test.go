// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeSynth struct {
	payload string
	err     error
	calls   int
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string, _ int) (string, error) {
	f.calls++
	return f.payload, f.err
}

type fakePlayback struct {
	stopped int
}

func (f *fakePlayback) Stop() { f.stopped++ }

type fakeSink struct {
	err       error
	playbacks []*fakePlayback
	dones     []func()
}

func (f *fakeSink) Play(_ []byte, done func()) (Playback, error) {
	if f.err != nil {
		return nil, f.err
	}
	pb := &fakePlayback{}
	f.playbacks = append(f.playbacks, pb)
	f.dones = append(f.dones, done)
	return pb, nil
}

func validPayload() string {
	return base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03, 0x04})
}

func newTestSpeaker(synth Synthesizer, sink *fakeSink) *Speaker {
	return NewSpeaker(synth, sink, 1500, nil)
}

// =============================================================================
// SPEAKER TESTS
// =============================================================================

func TestSpeaker_StartsPlayback(t *testing.T) {
	sink := &fakeSink{}
	s := newTestSpeaker(&fakeSynth{payload: validPayload()}, sink)

	s.Speak(context.Background(), "hello there", "msg_1")

	if len(sink.playbacks) != 1 {
		t.Fatalf("playbacks = %d, want 1", len(sink.playbacks))
	}
	if s.SpeakingID() != "msg_1" {
		t.Errorf("SpeakingID = %q, want msg_1", s.SpeakingID())
	}
}

func TestSpeaker_SameMessageToggles(t *testing.T) {
	sink := &fakeSink{}
	synth := &fakeSynth{payload: validPayload()}
	s := newTestSpeaker(synth, sink)

	s.Speak(context.Background(), "hello", "msg_1")
	s.Speak(context.Background(), "hello", "msg_1")

	if sink.playbacks[0].stopped == 0 {
		t.Error("first clip was not stopped")
	}
	if len(sink.playbacks) != 1 {
		t.Errorf("second Speak started a new clip, want toggle off")
	}
	if synth.calls != 1 {
		t.Errorf("synth calls = %d, want 1 (toggle must not re-synthesize)", synth.calls)
	}
	if s.SpeakingID() != "" {
		t.Errorf("SpeakingID = %q, want idle", s.SpeakingID())
	}
}

func TestSpeaker_NewMessageReplacesCurrent(t *testing.T) {
	sink := &fakeSink{}
	s := newTestSpeaker(&fakeSynth{payload: validPayload()}, sink)

	s.Speak(context.Background(), "first", "msg_1")
	s.Speak(context.Background(), "second", "msg_2")

	if sink.playbacks[0].stopped == 0 {
		t.Error("previous clip was not stopped")
	}
	if len(sink.playbacks) != 2 {
		t.Fatalf("playbacks = %d, want 2", len(sink.playbacks))
	}
	if s.SpeakingID() != "msg_2" {
		t.Errorf("SpeakingID = %q, want msg_2", s.SpeakingID())
	}
}

func TestSpeaker_SynthesisFailureLeavesIdle(t *testing.T) {
	sink := &fakeSink{}
	s := newTestSpeaker(&fakeSynth{err: errors.New("no service")}, sink)

	s.Speak(context.Background(), "hello", "msg_1")

	if len(sink.playbacks) != 0 {
		t.Error("playback started despite synthesis failure")
	}
	if s.SpeakingID() != "" {
		t.Error("speaker should be idle after a failure")
	}
}

func TestSpeaker_PlaybackFailureLeavesIdle(t *testing.T) {
	sink := &fakeSink{err: errors.New("device busy")}
	s := newTestSpeaker(&fakeSynth{payload: validPayload()}, sink)

	s.Speak(context.Background(), "hello", "msg_1")

	if s.SpeakingID() != "" {
		t.Error("speaker should be idle after a playback failure")
	}
}

func TestSpeaker_DoneClearsOnlyMatchingClip(t *testing.T) {
	sink := &fakeSink{}
	s := newTestSpeaker(&fakeSynth{payload: validPayload()}, sink)

	s.Speak(context.Background(), "first", "msg_1")
	firstDone := sink.dones[0]

	s.Speak(context.Background(), "second", "msg_2")

	// A late end-of-stream from the replaced clip must not clear the new one.
	firstDone()
	if s.SpeakingID() != "msg_2" {
		t.Errorf("stale done cleared the active clip, SpeakingID = %q", s.SpeakingID())
	}

	sink.dones[1]()
	if s.SpeakingID() != "" {
		t.Error("natural end of playback should clear the active clip")
	}
}

// gatedSynth blocks the call whose text matches blockOn until release is
// closed, so tests can interleave a second Speak mid-synthesis.
type gatedSynth struct {
	payload string
	blockOn string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSynth) Synthesize(_ context.Context, text string, _ int) (string, error) {
	if text == g.blockOn {
		close(g.entered)
		<-g.release
	}
	return g.payload, nil
}

func TestSpeaker_NewMessageDuringSynthesisWins(t *testing.T) {
	sink := &fakeSink{}
	synth := &gatedSynth{
		payload: validPayload(),
		blockOn: "first",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSpeaker(synth, sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Speak(context.Background(), "first", "msg_1")
	}()
	<-synth.entered

	// The newer request takes over while msg_1 is still synthesizing.
	s.Speak(context.Background(), "second", "msg_2")
	close(synth.release)
	<-done

	if len(sink.playbacks) != 1 {
		t.Fatalf("playbacks = %d, want 1 (stale clip must be dropped)", len(sink.playbacks))
	}
	if s.SpeakingID() != "msg_2" {
		t.Errorf("SpeakingID = %q, want msg_2", s.SpeakingID())
	}
	s.Stop()
	if sink.playbacks[0].stopped != 1 {
		t.Error("Stop did not reach the surviving clip")
	}
}

func TestSpeaker_ToggleDuringSynthesisCancels(t *testing.T) {
	sink := &fakeSink{}
	synth := &gatedSynth{
		payload: validPayload(),
		blockOn: "hello",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSpeaker(synth, sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Speak(context.Background(), "hello", "msg_1")
	}()
	<-synth.entered

	// Pressing speak again on the same message before audio starts must
	// cancel it, not queue a second playback.
	s.Speak(context.Background(), "hello", "msg_1")
	close(synth.release)
	<-done

	if len(sink.playbacks) != 0 {
		t.Errorf("playbacks = %d, want 0", len(sink.playbacks))
	}
	if s.SpeakingID() != "" {
		t.Errorf("SpeakingID = %q, want idle", s.SpeakingID())
	}
}

func TestSpeaker_StopDuringSynthesisCancels(t *testing.T) {
	sink := &fakeSink{}
	synth := &gatedSynth{
		payload: validPayload(),
		blockOn: "hello",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSpeaker(synth, sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Speak(context.Background(), "hello", "msg_1")
	}()
	<-synth.entered

	s.Stop()
	close(synth.release)
	<-done

	if len(sink.playbacks) != 0 {
		t.Errorf("playbacks = %d, want 0", len(sink.playbacks))
	}
	if s.SpeakingID() != "" {
		t.Errorf("SpeakingID = %q, want idle", s.SpeakingID())
	}
}

func TestSpeaker_StopIdempotent(t *testing.T) {
	sink := &fakeSink{}
	s := newTestSpeaker(&fakeSynth{payload: validPayload()}, sink)

	s.Stop() // idle stop is a no-op
	s.Speak(context.Background(), "hello", "msg_1")
	s.Stop()
	s.Stop()

	if sink.playbacks[0].stopped != 1 {
		t.Errorf("Stop calls reached playback = %d, want 1", sink.playbacks[0].stopped)
	}
	if s.SpeakingID() != "" {
		t.Error("speaker should be idle after Stop")
	}
}

// =============================================================================
// DECODE TESTS
// =============================================================================

func TestDecodePCM_ScalesFrames(t *testing.T) {
	// Two int16 frames: 16384 (half scale) and -32768 (full negative).
	payload := base64.StdEncoding.EncodeToString([]byte{0x00, 0x40, 0x00, 0x80})
	pcm, err := DecodePCM(payload)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}
	if len(pcm) != 8 {
		t.Fatalf("len(pcm) = %d, want 8 (two float32 samples)", len(pcm))
	}

	first := math.Float32frombits(binary.LittleEndian.Uint32(pcm[0:]))
	second := math.Float32frombits(binary.LittleEndian.Uint32(pcm[4:]))
	if first != 0.5 {
		t.Errorf("first sample = %v, want 0.5", first)
	}
	if second != -1.0 {
		t.Errorf("second sample = %v, want -1.0", second)
	}
}

func TestDecodePCM_DropsTrailingOddByte(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})
	pcm, err := DecodePCM(payload)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}
	if len(pcm) != 4 {
		t.Errorf("len(pcm) = %d, want one float32 sample", len(pcm))
	}
}

func TestDecodePCM_Empty(t *testing.T) {
	if _, err := DecodePCM(""); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("err = %v, want ErrEmptyClip", err)
	}
	if _, err := DecodePCM("!!!not base64!!!"); err == nil {
		t.Error("invalid base64 should fail")
	}
}
