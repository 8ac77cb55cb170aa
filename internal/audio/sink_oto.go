// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// =============================================================================
// OTO SINK
// =============================================================================

// otoSink plays PCM clips through the system sound device. The oto context
// is process-wide and created once.
type otoSink struct {
	ctx *oto.Context
}

// NewDeviceSink opens the system audio device for speech playback. The call
// blocks until the device is ready.
func NewDeviceSink() (Sink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &otoSink{ctx: ctx}, nil
}

func (s *otoSink) Play(pcm []byte, done func()) (Playback, error) {
	player := s.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	pb := &otoPlayback{player: player}
	go func() {
		for player.IsPlaying() {
			time.Sleep(50 * time.Millisecond)
		}
		if pb.close() {
			done()
		}
	}()
	return pb, nil
}

// otoPlayback closes the player exactly once, whether playback drained or
// was stopped early.
type otoPlayback struct {
	player  *oto.Player
	once    sync.Once
	stopped bool
	mu      sync.Mutex
}

func (p *otoPlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.once.Do(func() {
		p.player.Pause()
		_ = p.player.Close()
	})
}

// close is invoked by the drain goroutine; it reports whether playback
// ended naturally rather than via Stop.
func (p *otoPlayback) close() bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return false
	}
	p.once.Do(func() {
		_ = p.player.Close()
	})
	return true
}
