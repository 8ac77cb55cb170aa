// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(*Config)
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher for the config file at path. onChange is
// invoked with the freshly loaded config after each successful reload;
// reloads that fail to parse are dropped and the previous config stays in
// effect.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     path,
		watcher:  fw,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
	}, nil
}

// Watch starts watching. Editors replace files rather than rewrite them, so
// the parent directory is watched and events are filtered by name.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.processEvents(ctx)
	return nil
}

// processEvents drains fsnotify events, debouncing bursts from editors that
// write in several steps.
func (w *Watcher) processEvents(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// reload loads the file and hands the result to the callback.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.watcher.Close()
}
