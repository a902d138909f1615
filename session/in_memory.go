package session

import (
	"context"
	"sync"

	"github.com/hupe1980/rewindmesh/core"
)

// InMemoryStore is a volatile HistoryStore implementation storing sessions
// in a process local map. It is safe for concurrent access and best suited
// for tests or ephemeral demos. Each returned session is cloned to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in‑memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Get returns an existing session (clone) or creates a new one lazily.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*core.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(sessionID).Clone(), nil
}

// Create forces the creation (or overwriting) of a session with the given id.
func (s *InMemoryStore) Create(_ context.Context, sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess.Clone(), nil
}

// AppendEvent adds an event to an existing or newly created session.
func (s *InMemoryStore) AppendEvent(_ context.Context, sessionID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).AddEvent(ev)
	return nil
}

// AppendEntry adds a transcript entry to an existing or newly created session.
func (s *InMemoryStore) AppendEntry(_ context.Context, sessionID string, e *core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).AddEntry(e)
	return nil
}

// OverwriteEvents replaces the session's event log.
func (s *InMemoryStore) OverwriteEvents(_ context.Context, sessionID string, events []core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).ReplaceEvents(events)
	return nil
}

// OverwriteTranscript replaces the session's transcript.
func (s *InMemoryStore) OverwriteTranscript(_ context.Context, sessionID string, entries []*core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).ReplaceTranscript(entries)
	return nil
}

// getOrCreateLocked returns the stored session, allocating it on first use;
// caller must already hold the write lock.
func (s *InMemoryStore) getOrCreateLocked(sessionID string) *core.Session {
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}
