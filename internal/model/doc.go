// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// A ChatSession is a titled, ordered conversation thread. Messages carry a
// role (user or model), mutable text, and an optional inline image. The
// package also provides the helpers that derive session titles and map a
// message list into the outbound conversation history sent to the
// generative service.
package model
