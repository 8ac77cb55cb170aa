// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/logging"
	"github.com/SMGAMESTUDIO/SM-AI-Partners/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore owns the ordered collection of chat sessions and the active
// session pointer. Every mutation is written through to the KV store; a
// failed write is logged and the in-memory state stays authoritative until
// the next successful write.
type SessionStore struct {
	mu       sync.Mutex
	kv       KV
	log      logging.Logger
	sessions []*model.ChatSession
	activeID string
}

// NewSessionStore creates a store rehydrated from storage. Malformed stored
// data is discarded (empty-state fallback); rehydration never fails.
func NewSessionStore(kv KV, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	s := &SessionStore{kv: kv, log: log}

	data, ok, err := kv.Get(KeySessions)
	if err != nil {
		log.Warnf("session rehydration read failed: %v", err)
		return s
	}
	if !ok {
		return s
	}

	var sessions []*model.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		log.Warnf("discarding malformed session data: %v", err)
		return s
	}

	s.sessions = sessions
	if len(sessions) > 0 {
		s.activeID = sessions[0].ID
	}
	return s
}

// =============================================================================
// READS
// =============================================================================

// KV exposes the underlying key-value store so sibling state (usage
// ledger, preferences) can share one database handle.
func (s *SessionStore) KV() KV {
	return s.kv
}

// Sessions returns a copy of the collection ordered by recency (most
// recently updated first).
func (s *SessionStore) Sessions() []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out
}

// Get returns a copy of the named session.
func (s *SessionStore) Get(id string) (model.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.find(id); sess != nil {
		return *sess, true
	}
	return model.ChatSession{}, false
}

// Messages returns a copy of the named session's message list.
func (s *SessionStore) Messages(id string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return nil
	}
	out := make([]model.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out
}

// ActiveID returns the active session id, or "" when no session is active.
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SetActive updates the active session pointer. An empty id means "blank
// context": the next send creates a new session.
func (s *SessionStore) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// =============================================================================
// MUTATIONS
// =============================================================================

// EnsureSession returns the given id unchanged when non-empty; otherwise it
// creates a new session titled from seedText (or the mode label), prepends
// it to the collection, and makes it active. This call never fails.
func (s *SessionStore) EnsureSession(id, seedText string, mode model.Mode) string {
	if id != "" {
		return id
	}

	s.mu.Lock()
	sess := model.NewChatSession(seedText, mode)
	s.sessions = append([]*model.ChatSession{sess}, s.sessions...)
	s.activeID = sess.ID
	s.persistLocked()
	s.mu.Unlock()

	return sess.ID
}

// AppendMessage appends to the named session and refreshes its LastUpdated.
// Unknown session ids are a silent no-op.
func (s *SessionStore) AppendMessage(sessionID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastUpdated = time.Now()
	s.persistLocked()
}

// UpdateMessageText replaces the text of the matching message in place.
// Called once per received chunk with the cumulative text so far.
func (s *SessionStore) UpdateMessageText(sessionID, messageID, newText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages[i].Text = newText
			break
		}
	}
	sess.LastUpdated = time.Now()
	s.persistLocked()
}

// SetMessageImage attaches generated image data to the matching message.
func (s *SessionStore) SetMessageImage(sessionID, messageID, image string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages[i].Image = image
			break
		}
	}
	sess.LastUpdated = time.Now()
	s.persistLocked()
}

// RemoveMessage deletes the matching message from the named session. Used
// when a failed stream produced no text, and by regenerate.
func (s *SessionStore) RemoveMessage(sessionID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages = append(sess.Messages[:i], sess.Messages[i+1:]...)
			break
		}
	}
	s.persistLocked()
}

// DeleteSession removes the named session; the active pointer is cleared
// when it pointed at the deleted session.
func (s *SessionStore) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
	}
	s.persistLocked()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked serializes the whole collection to storage. Caller must
// hold the mutex.
func (s *SessionStore) persistLocked() {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		s.log.Errorf("failed to marshal sessions: %v", err)
		return
	}
	if err := s.kv.Set(KeySessions, data); err != nil {
		s.log.Errorf("failed to persist sessions: %v", err)
	}
}

// find returns the session with the given id, or nil. Caller must hold the
// mutex.
func (s *SessionStore) find(id string) *model.ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}
