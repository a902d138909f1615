package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/rewindmesh/core"
)

// History is an in-memory core.History that records every overwrite.
// Set EventsErr / TranscriptErr to make the corresponding overwrite fail.
type History struct {
	mu         sync.Mutex
	events     []core.Event
	transcript []*core.Entry

	EventsErr     error
	TranscriptErr error

	EventWrites      int
	TranscriptWrites int
}

var _ core.History = (*History)(nil)

// NewHistory creates a fake history holding the given logs.
func NewHistory(events []core.Event, transcript []*core.Entry) *History {
	return &History{events: events, transcript: transcript}
}

// Events returns the current event log.
func (h *History) Events() []core.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

// Transcript returns the current transcript.
func (h *History) Transcript() []*core.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.transcript
}

// OverwriteEvents replaces the event log unless EventsErr is set.
func (h *History) OverwriteEvents(_ context.Context, events []core.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.EventsErr != nil {
		return h.EventsErr
	}
	h.EventWrites++
	h.events = events
	return nil
}

// OverwriteTranscript replaces the transcript unless TranscriptErr is set.
func (h *History) OverwriteTranscript(_ context.Context, entries []*core.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.TranscriptErr != nil {
		return h.TranscriptErr
	}
	h.TranscriptWrites++
	h.transcript = entries
	return nil
}

// Timestamps returns the timestamps of events in order.
func Timestamps(events []core.Event) []int64 {
	out := make([]int64, len(events))
	for i, e := range events {
		out[i] = e.Timestamp
	}
	return out
}

// EntryTimestamps returns the timestamps of entries in order.
func EntryTimestamps(entries []*core.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Timestamp
	}
	return out
}
