package core

import "encoding/json"

// Role is the API role of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Derivation marks an entry synthesized by context management rather than
// produced by a real turn. Concrete types implement the unexported isDerived
// marker enabling a closed set; a nil Derivation is a plain turn.
type Derivation interface{ isDerived() }

// Summary is the derivation of a condensation summary. CondenseID matches the
// correlation id of the condense_context event that produced it.
type Summary struct {
	CondenseID string
}

func (Summary) isDerived() {}

// TruncationMarker is the derivation of a sliding-window truncation marker.
// TruncationID matches the correlation id of the sliding_window_truncation
// event that produced it.
type TruncationMarker struct {
	TruncationID string
}

func (TruncationMarker) isDerived() {}

// Entry is one element of the model-facing TranscriptLog.
//
// Entries are shared by pointer and must be treated as immutable once
// appended: the rewind engine detects changes by pointer identity, so any
// modification has to produce a new *Entry (see the With* helpers).
type Entry struct {
	Role      Role
	Parts     []Part
	Timestamp int64 // unix milliseconds; zero when untracked
	Derived   Derivation

	// CondenseParent names the summary that condensed this entry away.
	CondenseParent string
	// TruncationParent names the truncation marker that hid this entry.
	TruncationParent string

	// ReasoningDetails is the opaque provider reasoning payload attached to
	// assistant turns.
	ReasoningDetails json.RawMessage
}

// NewEntry creates a plain entry with a single text part.
func NewEntry(role Role, ts int64, text string) *Entry {
	return &Entry{Role: role, Timestamp: ts, Parts: []Part{TextPart{Text: text}}}
}

// NewSummaryEntry creates a condensation summary entry.
func NewSummaryEntry(ts int64, condenseID, text string) *Entry {
	e := NewEntry(RoleAssistant, ts, text)
	e.Derived = Summary{CondenseID: condenseID}
	return e
}

// NewTruncationMarkerEntry creates a sliding-window truncation marker entry.
func NewTruncationMarkerEntry(ts int64, truncationID, text string) *Entry {
	e := NewEntry(RoleUser, ts, text)
	e.Derived = TruncationMarker{TruncationID: truncationID}
	return e
}

// HasTimestamp reports whether the entry carries a tracked timestamp.
func (e *Entry) HasTimestamp() bool { return e.Timestamp != 0 }

// IsSummary reports whether the entry is a condensation summary.
func (e *Entry) IsSummary() bool {
	_, ok := e.Derived.(Summary)
	return ok
}

// IsTruncationMarker reports whether the entry is a truncation marker.
func (e *Entry) IsTruncationMarker() bool {
	_, ok := e.Derived.(TruncationMarker)
	return ok
}

// CorrelationID returns the id linking a derived entry to its originating
// event, or "" for plain entries.
func (e *Entry) CorrelationID() string {
	switch d := e.Derived.(type) {
	case Summary:
		return d.CondenseID
	case TruncationMarker:
		return d.TruncationID
	default:
		return ""
	}
}

// WithoutCondenseParent returns a copy with the condense parent tag cleared.
func (e *Entry) WithoutCondenseParent() *Entry {
	cp := *e
	cp.CondenseParent = ""
	return &cp
}

// WithoutTruncationParent returns a copy with the truncation parent tag cleared.
func (e *Entry) WithoutTruncationParent() *Entry {
	cp := *e
	cp.TruncationParent = ""
	return &cp
}

// WithoutReasoning returns a copy without ReasoningDetails.
func (e *Entry) WithoutReasoning() *Entry {
	cp := *e
	cp.ReasoningDetails = nil
	return &cp
}
