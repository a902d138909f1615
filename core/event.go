package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind classifies an EventLog entry. Values match the persisted "say"
// discriminator of the UI message log.
type EventKind string

const (
	// EventKindRequestStarted marks the start of a model request (turn boundary).
	EventKindRequestStarted EventKind = "api_req_started"
	// EventKindUserFeedback marks a user message sent mid-task (turn boundary).
	EventKindUserFeedback EventKind = "user_feedback"
	// EventKindCondenseContext records a context condensation; its correlation
	// id names the Summary entry it produced in the transcript.
	EventKindCondenseContext EventKind = "condense_context"
	// EventKindSlidingWindowTruncation records a sliding-window truncation; its
	// correlation id names the truncation marker entry in the transcript.
	EventKindSlidingWindowTruncation EventKind = "sliding_window_truncation"
	EventKindText                    EventKind = "text"
	EventKindCompletionResult        EventKind = "completion_result"
	EventKindError                   EventKind = "error"
	EventKindCheckpointSaved         EventKind = "checkpoint_saved"
)

// IsAnchorKind reports whether events of kind k partition the log into turns.
func IsAnchorKind(k EventKind) bool {
	return k == EventKindRequestStarted || k == EventKindUserFeedback
}

// Event is one element of the UI-facing EventLog. Events are values; the log
// is only ever rebuilt by exclusion, never edited in place.
type Event struct {
	Timestamp     int64 // unix milliseconds, unique within a log
	Kind          EventKind
	Text          string
	Partial       bool
	CorrelationID string // condense or truncation id; empty for other kinds
}

// IsAnchor reports whether the event marks a turn boundary.
func (e Event) IsAnchor() bool { return IsAnchorKind(e.Kind) }

// NewEvent creates an event of the given kind stamped with the current time.
func NewEvent(kind EventKind, text string) Event {
	return Event{Timestamp: time.Now().UnixMilli(), Kind: kind, Text: text}
}

// NewCondenseEvent creates a condense_context event for the given condense id.
func NewCondenseEvent(condenseID string) Event {
	e := NewEvent(EventKindCondenseContext, "")
	e.CorrelationID = condenseID
	return e
}

// NewTruncationEvent creates a sliding_window_truncation event for the given
// truncation id.
func NewTruncationEvent(truncationID string) Event {
	e := NewEvent(EventKindSlidingWindowTruncation, "")
	e.CorrelationID = truncationID
	return e
}

// NewID generates a new unique identifier suitable for correlation ids.
func NewID() string { return uuid.NewString() }

// IndexOfTimestamp returns the index of the event stamped ts or -1.
func IndexOfTimestamp(events []Event, ts int64) int {
	for i, e := range events {
		if e.Timestamp == ts {
			return i
		}
	}
	return -1
}
