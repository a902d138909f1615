package core

import (
	"sync"
	"time"
)

// Session is the owner of a conversation's two ledgers: the UI-facing event
// log and the model-facing transcript. It is safe for concurrent access.
//
// Contract:
//   - Mutations update the Updated timestamp
//   - GetEvents / GetTranscript return defensive copies of the slices; the
//     transcript copy shares entry pointers (entries are immutable)
//   - Replace* swap a whole log and never reorder the provided sequence
//   - Clone copies slices and maps for safe divergence
type Session struct {
	ID         string            `json:"id"`
	Events     []Event           `json:"events"`
	Transcript []*Entry          `json:"transcript"`
	Created    time.Time         `json:"created"`
	Updated    time.Time         `json:"updated"`
	Metadata   map[string]string `json:"metadata"`
	mu         sync.RWMutex
}

// NewSession creates a new empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Events: []Event{}, Transcript: []*Entry{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// AddEvent appends an event to the event log.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// AddEntry appends an entry to the transcript.
func (s *Session) AddEntry(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transcript = append(s.Transcript, e)
	s.Updated = time.Now()
}

// GetEvents returns a defensive copy of the event log.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return events
}

// GetTranscript returns a copy of the transcript slice. Entries are shared.
func (s *Session) GetTranscript() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*Entry, len(s.Transcript))
	copy(entries, s.Transcript)
	return entries
}

// ReplaceEvents swaps the event log for a copy of events.
func (s *Session) ReplaceEvents(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(make([]Event, 0, len(events)), events...)
	s.Updated = time.Now()
}

// ReplaceTranscript swaps the transcript for a copy of entries.
func (s *Session) ReplaceTranscript(entries []*Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transcript = append(make([]*Entry, 0, len(entries)), entries...)
	s.Updated = time.Now()
}

// Clone returns a copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:         s.ID,
		Events:     make([]Event, len(s.Events)),
		Transcript: make([]*Entry, len(s.Transcript)),
		Created:    s.Created,
		Updated:    s.Updated,
		Metadata:   make(map[string]string, len(s.Metadata)),
	}
	copy(clone.Events, s.Events)
	copy(clone.Transcript, s.Transcript)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
