package rewind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/logging"
)

// ErrNotFound is returned when a rewind target timestamp is not in the event log.
var ErrNotFound = errors.New("message not found")

const (
	opRewindToTimestamp = "rewindToTimestamp"
	opRewindToIndex     = "rewindToIndex"
)

// RewindToTimestamp cuts both logs back to the event stamped ts. Every event
// after the target is removed, and so is the target unless
// IncludeTargetMessage is set. Transcript entries stamped at or after ts go
// too, along with summaries and truncation markers whose originating events
// were cut.
//
// A missing timestamp returns an error wrapping ErrNotFound and leaves both
// logs untouched.
func (m *Manager) RewindToTimestamp(ctx context.Context, ts int64, opts RewindOptions) error {
	idx := core.IndexOfTimestamp(m.history.Events(), ts)
	if idx == -1 {
		return fmt.Errorf("rewind to timestamp %d: %w", ts, ErrNotFound)
	}
	cutoff := idx
	if opts.IncludeTargetMessage {
		cutoff = idx + 1
	}
	return m.performRewind(ctx, opRewindToTimestamp, cutoff, ts, opts)
}

// RewindToIndex keeps events [0, toIndex) and removes the rest. The
// transcript cutoff is the timestamp of the event at toIndex, or the current
// time when toIndex is past the end of the log.
func (m *Manager) RewindToIndex(ctx context.Context, toIndex int, opts RewindOptions) error {
	toIndex = max(toIndex, 0)
	events := m.history.Events()
	cutoffTs := m.opts.Now().UnixMilli()
	if toIndex < len(events) {
		cutoffTs = events[toIndex].Timestamp
	}
	return m.performRewind(ctx, opRewindToIndex, toIndex, cutoffTs, opts)
}

func (m *Manager) performRewind(ctx context.Context, op string, cutoffIdx int, cutoffTs int64, opts RewindOptions) error {
	start := time.Now()
	log := m.opts.Logger

	events := m.history.Events()
	cutoffIdx = min(cutoffIdx, len(events))

	ids := collectCorrelationIDs(log, events, cutoffIdx, len(events))

	if cutoffIdx < len(events) {
		if err := m.history.OverwriteEvents(ctx, events[:cutoffIdx:cutoffIdx]); err != nil {
			logging.LogRewind(log, op, 0, 0, time.Since(start), err)
			return err
		}
	}

	original := m.history.Transcript()
	entries := make([]*core.Entry, 0, len(original))
	for _, e := range original {
		if !e.HasTimestamp() || e.Timestamp < cutoffTs {
			entries = append(entries, e)
		}
	}
	entries = dropOrphans(log, entries, ids)
	if !opts.SkipCleanup {
		entries = m.opts.Cleanup(entries)
	}

	if transcriptChanged(original, entries) {
		if err := m.history.OverwriteTranscript(ctx, entries); err != nil {
			logging.LogRewind(log, op, len(events)-cutoffIdx, 0, time.Since(start), err)
			return err
		}
	}

	logging.LogRewind(log, op, len(events)-cutoffIdx, len(original)-len(entries), time.Since(start), nil)
	return nil
}
