// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/gemini"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

// apologyText replaces the assistant message whenever a request fails,
// including after some text already streamed.
const apologyText = "Maafi chahta hoon, server se rabta nahi ho pa raha. Baraye meherbani dubara koshish karein."

// ErrBusy is returned when a send is requested while another is in flight.
var ErrBusy = errors.New("a request is already in progress")

// =============================================================================
// SERVICE INTERFACES
// =============================================================================

// ChatService is the slice of the Gemini client the orchestrator needs.
type ChatService interface {
	StreamChat(ctx context.Context, req gemini.ChatRequest, onChunk func(string)) error
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// AutoSpeaker reads a completed response aloud.
type AutoSpeaker interface {
	Speak(ctx context.Context, text, messageID string)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Update describes one observable change during a send. Delta carries the
// chunk that just arrived; Done marks the terminal update for the send.
type Update struct {
	SessionID string
	MessageID string
	Delta     string
	Done      bool
	Err       error
}

// SendOptions parameterizes one send.
type SendOptions struct {
	// SessionID targets an existing session; empty or unknown ids start
	// a fresh one seeded from the prompt.
	SessionID string

	Prompt string

	// Image is an optional base64 JPEG attachment, with or without a
	// data-URL prefix.
	Image string

	Mode      model.Mode
	DeepThink bool
	AutoSpeak bool
}

// Result is the outcome of a completed send.
type Result struct {
	SessionID string
	MessageID string
	Text      string
	Cancelled bool
}

// Orchestrator coordinates the session store, the Gemini service, and the
// speech pipeline. Send blocks until the response finishes, fails, or is
// cancelled; callers run it in a goroutine and use Cancel from another.
type Orchestrator struct {
	mu   sync.Mutex
	busy bool

	store   *store.SessionStore
	svc     ChatService
	speaker AutoSpeaker
	log     logging.Logger

	historyWindow int
	cancelMgr     *cancelManager
	notify        func(Update)
}

// New builds an orchestrator. speaker and notify may be nil.
func New(st *store.SessionStore, svc ChatService, speaker AutoSpeaker, historyWindow int, log logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.Nop()
	}
	return &Orchestrator{
		store:         st,
		svc:           svc,
		speaker:       speaker,
		log:           log,
		historyWindow: historyWindow,
		cancelMgr:     newCancelManager(),
	}
}

// SetNotify registers a callback invoked for every streamed chunk and for
// the terminal update of each send. Called before any send starts.
func (o *Orchestrator) SetNotify(fn func(Update)) {
	o.notify = fn
}

// SetSpeaker wires the speech pipeline after startup, once an audio
// device is known to be available. Called before any send starts.
func (o *Orchestrator) SetSpeaker(s AutoSpeaker) {
	o.speaker = s
}

// Busy reports whether a send is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Cancel aborts the in-flight send, if any. The send keeps whatever text
// already streamed.
func (o *Orchestrator) Cancel() {
	o.cancelMgr.cancel()
}

// =============================================================================
// SEND PIPELINE
// =============================================================================

// Send runs one full exchange: resolve the session, append the user
// message and an assistant placeholder, then stream the response into the
// placeholder. Returns ErrBusy if another send is in flight.
func (o *Orchestrator) Send(ctx context.Context, opts SendOptions) (Result, error) {
	if err := o.acquire(); err != nil {
		return Result{}, err
	}
	defer o.release()

	sessionID := opts.SessionID
	if _, ok := o.store.Get(sessionID); !ok {
		// Appends to an unknown session are silent no-ops; start a fresh
		// one instead of letting the exchange vanish.
		sessionID = o.store.EnsureSession("", opts.Prompt, opts.Mode)
	}
	history := model.HistoryTurns(o.store.Messages(sessionID), o.historyWindow)

	o.store.AppendMessage(sessionID, model.NewUserMessage(opts.Prompt, opts.Image))

	if opts.Mode == model.ModeImage {
		return o.runImage(ctx, sessionID, opts)
	}
	return o.runStream(ctx, sessionID, history, opts)
}

// Regenerate drops the last assistant message of a session and replays the
// last user message through the stream pipeline.
func (o *Orchestrator) Regenerate(ctx context.Context, sessionID string, opts SendOptions) (Result, error) {
	if err := o.acquire(); err != nil {
		return Result{}, err
	}
	defer o.release()

	session, ok := o.store.Get(sessionID)
	if !ok {
		return Result{}, errors.New("unknown session")
	}
	userMsg, ok := session.LastUserMessage()
	if !ok {
		return Result{}, errors.New("session has no user message to replay")
	}

	msgs := session.Messages
	if last := len(msgs) - 1; last >= 0 && msgs[last].Role == model.RoleModel {
		o.store.RemoveMessage(sessionID, msgs[last].ID)
	}

	// History ends at the replayed user message so the model does not see
	// its own discarded answer.
	prior := o.store.Messages(sessionID)
	if n := len(prior); n > 0 && prior[n-1].ID == userMsg.ID {
		prior = prior[:n-1]
	}
	history := model.HistoryTurns(prior, o.historyWindow)

	opts.SessionID = sessionID
	opts.Prompt = userMsg.Text
	opts.Image = userMsg.Image
	return o.runStream(ctx, sessionID, history, opts)
}

// runStream streams a chat response into a fresh placeholder message.
func (o *Orchestrator) runStream(ctx context.Context, sessionID string, history []model.Turn, opts SendOptions) (Result, error) {
	placeholder := model.NewModelPlaceholder()
	o.store.AppendMessage(sessionID, placeholder)

	ctx, cancel := context.WithCancel(ctx)
	o.cancelMgr.set(cancel)
	defer o.cancelMgr.clear()

	req := gemini.ChatRequest{
		Prompt:    opts.Prompt,
		History:   history,
		DeepThink: opts.DeepThink,
		Mode:      opts.Mode,
	}
	if opts.Image != "" {
		jpeg, err := gemini.DecodeImage(opts.Image)
		if err != nil {
			o.log.Warnf("attachment decode failed, sending text only: %v", err)
		} else {
			req.ImageJPEG = jpeg
		}
	}

	var buf strings.Builder
	err := o.svc.StreamChat(ctx, req, func(chunk string) {
		buf.WriteString(chunk)
		o.store.UpdateMessageText(sessionID, placeholder.ID, buf.String())
		o.emit(Update{SessionID: sessionID, MessageID: placeholder.ID, Delta: chunk})
	})

	return o.finishStream(ctx, sessionID, placeholder.ID, buf.String(), opts, err)
}

// finishStream settles the placeholder after the stream ends.
func (o *Orchestrator) finishStream(ctx context.Context, sessionID, messageID, text string, opts SendOptions, err error) (Result, error) {
	res := Result{SessionID: sessionID, MessageID: messageID, Text: text}

	if ctx.Err() != nil {
		// Cancelled. A partial answer stays in the transcript; an empty
		// placeholder would just render as a stuck spinner, so drop it.
		res.Cancelled = true
		if text == "" {
			o.store.RemoveMessage(sessionID, messageID)
		}
		o.emit(Update{SessionID: sessionID, MessageID: messageID, Done: true})
		return res, nil
	}

	if err == nil && text == "" {
		err = gemini.ErrEmptyResponse
	}
	if err != nil {
		// A failed exchange never leaves a half answer in the transcript;
		// whatever streamed is replaced wholesale with the apology.
		o.log.Errorf("chat request failed (%s): %v", gemini.Classify(err), err)
		o.store.UpdateMessageText(sessionID, messageID, apologyText)
		res.Text = apologyText
		o.emit(Update{SessionID: sessionID, MessageID: messageID, Done: true, Err: err})
		return res, err
	}

	o.emit(Update{SessionID: sessionID, MessageID: messageID, Done: true})

	if opts.AutoSpeak && o.speaker != nil {
		o.speaker.Speak(context.WithoutCancel(ctx), text, messageID)
	}
	return res, nil
}

// =============================================================================
// IMAGE GENERATION
// =============================================================================

// runImage generates one image and attaches it to a fresh placeholder.
// Quota is the caller's concern; by the time this runs the attempt has
// already been counted.
func (o *Orchestrator) runImage(ctx context.Context, sessionID string, opts SendOptions) (Result, error) {
	placeholder := model.NewModelPlaceholder()
	o.store.AppendMessage(sessionID, placeholder)

	ctx, cancel := context.WithCancel(ctx)
	o.cancelMgr.set(cancel)
	defer o.cancelMgr.clear()

	image, err := o.svc.GenerateImage(ctx, opts.Prompt)

	res := Result{SessionID: sessionID, MessageID: placeholder.ID}
	if ctx.Err() != nil {
		res.Cancelled = true
		o.store.RemoveMessage(sessionID, placeholder.ID)
		o.emit(Update{SessionID: sessionID, MessageID: placeholder.ID, Done: true})
		return res, nil
	}
	if err != nil {
		o.log.Errorf("image generation failed (%s): %v", gemini.Classify(err), err)
		o.store.UpdateMessageText(sessionID, placeholder.ID, apologyText)
		o.emit(Update{SessionID: sessionID, MessageID: placeholder.ID, Done: true, Err: err})
		return res, err
	}

	o.store.SetMessageImage(sessionID, placeholder.ID, image)
	o.emit(Update{SessionID: sessionID, MessageID: placeholder.ID, Done: true})
	return res, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrBusy
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) emit(u Update) {
	if o.notify != nil {
		o.notify(u)
	}
}
