package core

import "context"

// History is the narrow read/write view of a conversation's two ledgers that
// the rewind engine operates on. The owner is responsible for serializing
// calls that mutate the same history.
type History interface {
	// Events returns the current event log.
	Events() []Event
	// Transcript returns the current transcript.
	Transcript() []*Entry
	// OverwriteEvents atomically replaces the event log. It must not reorder.
	OverwriteEvents(ctx context.Context, events []Event) error
	// OverwriteTranscript atomically replaces the transcript.
	OverwriteTranscript(ctx context.Context, entries []*Entry) error
}

// HistoryStore persists sessions and their two ledgers.
type HistoryStore interface {
	Create(ctx context.Context, id string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	AppendEvent(ctx context.Context, sessionID string, ev Event) error
	AppendEntry(ctx context.Context, sessionID string, e *Entry) error
	OverwriteEvents(ctx context.Context, sessionID string, events []Event) error
	OverwriteTranscript(ctx context.Context, sessionID string, entries []*Entry) error
}
