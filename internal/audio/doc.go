// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio plays synthesized speech clips.
//
// The Speaker owns at most one active clip at a time. Requesting speech
// for the message that is already playing stops it; requesting speech for
// a different message replaces the current clip. Synthesis or playback
// failures leave the speaker idle without surfacing an error to the user.
//
// Playback output is abstracted behind the Sink interface so the pipeline
// can be tested without a sound device.
package audio
