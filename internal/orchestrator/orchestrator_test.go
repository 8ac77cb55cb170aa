// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/gemini"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/store"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key string, value []byte) error {
	m.data[key] = value
	return nil
}

// fakeService scripts the Gemini client. hook runs inside StreamChat after
// the chunks are delivered, before the scripted error is returned.
type fakeService struct {
	chunks []string
	err    error
	hook   func(ctx context.Context)

	image    string
	imageErr error

	lastReq gemini.ChatRequest
	calls   int
}

func (f *fakeService) StreamChat(ctx context.Context, req gemini.ChatRequest, onChunk func(string)) error {
	f.calls++
	f.lastReq = req
	for _, c := range f.chunks {
		onChunk(c)
	}
	if f.hook != nil {
		f.hook(ctx)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return f.err
}

func (f *fakeService) GenerateImage(ctx context.Context, _ string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return f.image, f.imageErr
}

type fakeSpeaker struct {
	text string
	id   string
}

func (f *fakeSpeaker) Speak(_ context.Context, text, messageID string) {
	f.text = text
	f.id = messageID
}

func newTestOrchestrator(svc ChatService, speaker AutoSpeaker) (*Orchestrator, *store.SessionStore) {
	st := store.NewSessionStore(newMemKV(), nil)
	return New(st, svc, speaker, 10, nil), st
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_StreamsChunksIntoPlaceholder(t *testing.T) {
	svc := &fakeService{chunks: []string{"Hel", "lo ", "world"}}
	o, st := newTestOrchestrator(svc, nil)

	var deltas []string
	o.SetNotify(func(u Update) {
		if u.Delta != "" {
			deltas = append(deltas, u.Delta)
		}
	})

	res, err := o.Send(context.Background(), SendOptions{Prompt: "greet me", Mode: model.ModeEducation})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res.Text != "Hello world" {
		t.Errorf("res.Text = %q, want %q", res.Text, "Hello world")
	}

	msgs := st.Messages(res.SessionID)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want user + assistant", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Text != "greet me" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[1].Role != model.RoleModel || msgs[1].Text != "Hello world" {
		t.Errorf("assistant message = %+v", msgs[1])
	}
	if len(deltas) != 3 || deltas[0] != "Hel" {
		t.Errorf("deltas = %v", deltas)
	}
}

func TestSend_HistoryExcludesCurrentPrompt(t *testing.T) {
	svc := &fakeService{chunks: []string{"ok"}}
	o, _ := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "first"})
	if err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	if len(svc.lastReq.History) != 0 {
		t.Errorf("first send carried history: %v", svc.lastReq.History)
	}

	if _, err := o.Send(context.Background(), SendOptions{SessionID: res.SessionID, Prompt: "second"}); err != nil {
		t.Fatalf("second Send failed: %v", err)
	}
	hist := svc.lastReq.History
	if len(hist) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(hist))
	}
	if hist[0].Text != "first" || hist[1].Text != "ok" {
		t.Errorf("history = %v", hist)
	}
	if svc.lastReq.Prompt != "second" {
		t.Errorf("prompt = %q", svc.lastReq.Prompt)
	}
}

func TestSend_CancelKeepsStreamedPrefix(t *testing.T) {
	svc := &fakeService{chunks: []string{"partial answ"}}
	o, st := newTestOrchestrator(svc, nil)
	svc.hook = func(context.Context) { o.Cancel() }

	res, err := o.Send(context.Background(), SendOptions{Prompt: "long question"})
	if err != nil {
		t.Fatalf("cancelled send should not error: %v", err)
	}
	if !res.Cancelled {
		t.Error("res.Cancelled = false, want true")
	}

	msgs := st.Messages(res.SessionID)
	if len(msgs) != 2 || msgs[1].Text != "partial answ" {
		t.Errorf("partial text not kept: %v", msgs)
	}
}

func TestSend_CancelBeforeAnyTextDropsPlaceholder(t *testing.T) {
	svc := &fakeService{}
	o, st := newTestOrchestrator(svc, nil)
	svc.hook = func(context.Context) { o.Cancel() }

	res, err := o.Send(context.Background(), SendOptions{Prompt: "never mind"})
	if err != nil {
		t.Fatalf("cancelled send should not error: %v", err)
	}
	if !res.Cancelled {
		t.Error("res.Cancelled = false, want true")
	}

	msgs := st.Messages(res.SessionID)
	if len(msgs) != 1 || msgs[0].Role != model.RoleUser {
		t.Errorf("placeholder should be removed, messages = %v", msgs)
	}
}

func TestSend_FailureReplacesPlaceholderWithApology(t *testing.T) {
	svc := &fakeService{err: errors.New("dial tcp: connection refused")}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "hello"})
	if err == nil {
		t.Fatal("Send should surface the service error")
	}
	if gemini.Classify(err) != gemini.KindNetwork {
		t.Errorf("Classify(err) = %v, want network", gemini.Classify(err))
	}

	msgs := st.Messages(res.SessionID)
	if msgs[1].Text != apologyText {
		t.Errorf("placeholder text = %q, want apology", msgs[1].Text)
	}
}

func TestSend_LateFailureReplacesPartialText(t *testing.T) {
	svc := &fakeService{chunks: []string{"half an ans"}, err: errors.New("stream broke")}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "hello"})
	if err == nil {
		t.Fatal("Send should surface the service error")
	}

	// A failed exchange never keeps a half answer; only cancellation does.
	msgs := st.Messages(res.SessionID)
	if msgs[1].Text != apologyText {
		t.Errorf("assistant text = %q, want apology", msgs[1].Text)
	}
	if res.Text != apologyText {
		t.Errorf("res.Text = %q, want apology", res.Text)
	}
}

func TestSend_UnknownSessionStartsFresh(t *testing.T) {
	svc := &fakeService{chunks: []string{"hello"}}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{SessionID: "sess_gone", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res.SessionID == "sess_gone" {
		t.Fatal("send targeted a session that does not exist")
	}

	msgs := st.Messages(res.SessionID)
	if len(msgs) != 2 || msgs[1].Text != "hello" {
		t.Errorf("exchange not recorded in the fresh session: %v", msgs)
	}
}

func TestSend_EmptyStreamIsEmptyResponseError(t *testing.T) {
	svc := &fakeService{}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "hello"})
	if !gemini.IsEmptyResponse(err) {
		t.Fatalf("err = %v, want empty-response", err)
	}
	if st.Messages(res.SessionID)[1].Text != apologyText {
		t.Error("empty response should leave the apology in place")
	}
}

func TestSend_RejectsOverlappingSends(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := &fakeService{hook: func(ctx context.Context) {
		close(started)
		<-release
	}}
	o, _ := newTestOrchestrator(svc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.Send(context.Background(), SendOptions{Prompt: "slow"})
		done <- err
	}()

	<-started
	if !o.Busy() {
		t.Error("Busy = false during an in-flight send")
	}
	_, err := o.Send(context.Background(), SendOptions{Prompt: "eager"})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping Send err = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err == nil {
		// empty stream, so the first send ends with an empty-response error
		t.Error("first send should report empty response")
	}
	if o.Busy() {
		t.Error("Busy = true after the send finished")
	}
}

func TestSend_AutoSpeakReadsFinalText(t *testing.T) {
	svc := &fakeService{chunks: []string{"spoken reply"}}
	speaker := &fakeSpeaker{}
	o, _ := newTestOrchestrator(svc, speaker)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "hello", AutoSpeak: true})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if speaker.text != "spoken reply" || speaker.id != res.MessageID {
		t.Errorf("speaker got (%q, %q), want (%q, %q)", speaker.text, speaker.id, "spoken reply", res.MessageID)
	}
}

func TestSend_NoAutoSpeakWithoutOptIn(t *testing.T) {
	svc := &fakeService{chunks: []string{"quiet reply"}}
	speaker := &fakeSpeaker{}
	o, _ := newTestOrchestrator(svc, speaker)

	if _, err := o.Send(context.Background(), SendOptions{Prompt: "hello"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if speaker.text != "" {
		t.Errorf("speaker invoked without opt-in: %q", speaker.text)
	}
}

// =============================================================================
// REGENERATE TESTS
// =============================================================================

func TestRegenerate_ReplaysLastUserMessage(t *testing.T) {
	svc := &fakeService{chunks: []string{"first answer"}}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "the question"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	svc.chunks = []string{"second answer"}
	res2, err := o.Regenerate(context.Background(), res.SessionID, SendOptions{})
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}

	if svc.lastReq.Prompt != "the question" {
		t.Errorf("replayed prompt = %q", svc.lastReq.Prompt)
	}
	if len(svc.lastReq.History) != 0 {
		t.Errorf("regenerated request should not see the discarded answer: %v", svc.lastReq.History)
	}

	msgs := st.Messages(res.SessionID)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2 after replacement", len(msgs))
	}
	if msgs[1].Text != "second answer" {
		t.Errorf("assistant text = %q, want %q", msgs[1].Text, "second answer")
	}
	if res2.Text != "second answer" {
		t.Errorf("res.Text = %q", res2.Text)
	}
}

func TestRegenerate_UnknownSession(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeService{}, nil)
	if _, err := o.Regenerate(context.Background(), "sess_missing", SendOptions{}); err == nil {
		t.Error("Regenerate on unknown session should fail")
	}
}

// =============================================================================
// IMAGE GENERATION TESTS
// =============================================================================

func TestSend_ImageModeAttachesResult(t *testing.T) {
	svc := &fakeService{image: "aW1hZ2VieXRlcw=="}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "a red fort at sunset", Mode: model.ModeImage})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := st.Messages(res.SessionID)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[1].Image != "aW1hZ2VieXRlcw==" {
		t.Errorf("assistant image = %q", msgs[1].Image)
	}
}

func TestSend_ImageModeFailure(t *testing.T) {
	svc := &fakeService{imageErr: errors.New("quota exceeded upstream")}
	o, st := newTestOrchestrator(svc, nil)

	res, err := o.Send(context.Background(), SendOptions{Prompt: "anything", Mode: model.ModeImage})
	if err == nil {
		t.Fatal("Send should surface the generation error")
	}
	if st.Messages(res.SessionID)[1].Text != apologyText {
		t.Error("failed generation should leave the apology in place")
	}
}
