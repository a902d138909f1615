package testutil

import "github.com/hupe1980/rewindmesh/core"

// EventLogBuilder provides a fluent helper for constructing event logs.
// Example:
//
//	events := NewEventLog().RequestStarted(1).Condense(2, "c1").RequestStarted(3).Build()
//
// Timestamps are given explicitly so tests can refer to them.
type EventLogBuilder struct {
	events []core.Event
}

// NewEventLog creates an empty builder.
func NewEventLog() *EventLogBuilder { return &EventLogBuilder{} }

// Event appends an event of an arbitrary kind (chainable).
func (b *EventLogBuilder) Event(ts int64, kind core.EventKind) *EventLogBuilder {
	b.events = append(b.events, core.Event{Timestamp: ts, Kind: kind})
	return b
}

// RequestStarted appends an api_req_started anchor (chainable).
func (b *EventLogBuilder) RequestStarted(ts int64) *EventLogBuilder {
	return b.Event(ts, core.EventKindRequestStarted)
}

// UserFeedback appends a user_feedback anchor (chainable).
func (b *EventLogBuilder) UserFeedback(ts int64) *EventLogBuilder {
	return b.Event(ts, core.EventKindUserFeedback)
}

// Text appends a non-anchor text event (chainable).
func (b *EventLogBuilder) Text(ts int64) *EventLogBuilder {
	return b.Event(ts, core.EventKindText)
}

// Condense appends a condense_context event carrying condenseID (chainable).
func (b *EventLogBuilder) Condense(ts int64, condenseID string) *EventLogBuilder {
	b.events = append(b.events, core.Event{Timestamp: ts, Kind: core.EventKindCondenseContext, CorrelationID: condenseID})
	return b
}

// Truncation appends a sliding_window_truncation event carrying truncationID (chainable).
func (b *EventLogBuilder) Truncation(ts int64, truncationID string) *EventLogBuilder {
	b.events = append(b.events, core.Event{Timestamp: ts, Kind: core.EventKindSlidingWindowTruncation, CorrelationID: truncationID})
	return b
}

// Build returns the event log.
func (b *EventLogBuilder) Build() []core.Event {
	return append([]core.Event(nil), b.events...)
}

// TranscriptBuilder provides a fluent helper for constructing transcripts.
type TranscriptBuilder struct {
	entries []*core.Entry
}

// NewTranscript creates an empty builder.
func NewTranscript() *TranscriptBuilder { return &TranscriptBuilder{} }

// User appends a plain user entry (chainable).
func (b *TranscriptBuilder) User(ts int64) *TranscriptBuilder {
	return b.Entry(core.NewEntry(core.RoleUser, ts, "user"))
}

// Assistant appends a plain assistant entry (chainable).
func (b *TranscriptBuilder) Assistant(ts int64) *TranscriptBuilder {
	return b.Entry(core.NewEntry(core.RoleAssistant, ts, "assistant"))
}

// Summary appends a summary linked to condenseID (chainable).
func (b *TranscriptBuilder) Summary(ts int64, condenseID string) *TranscriptBuilder {
	return b.Entry(core.NewSummaryEntry(ts, condenseID, "summary"))
}

// Marker appends a truncation marker linked to truncationID (chainable).
func (b *TranscriptBuilder) Marker(ts int64, truncationID string) *TranscriptBuilder {
	return b.Entry(core.NewTruncationMarkerEntry(ts, truncationID, "truncated"))
}

// Entry appends an arbitrary entry (chainable).
func (b *TranscriptBuilder) Entry(e *core.Entry) *TranscriptBuilder {
	b.entries = append(b.entries, e)
	return b
}

// Build returns the transcript.
func (b *TranscriptBuilder) Build() []*core.Entry {
	return append([]*core.Entry(nil), b.entries...)
}
