package rewind

import (
	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/logging"
)

// removedIDs holds the correlation ids of context-management events that are
// about to leave the event log.
type removedIDs struct {
	condense   map[string]struct{}
	truncation map[string]struct{}
}

func (r removedIDs) empty() bool { return len(r.condense) == 0 && len(r.truncation) == 0 }

// collectCorrelationIDs scans events[from:to], clamped to the log bounds, for
// condense_context and sliding_window_truncation events. It must run before
// the events are cut, afterwards the ids are unrecoverable.
func collectCorrelationIDs(log logging.Logger, events []core.Event, from, to int) removedIDs {
	ids := removedIDs{condense: map[string]struct{}{}, truncation: map[string]struct{}{}}
	from = max(from, 0)
	to = min(to, len(events))
	for i := from; i < to; i++ {
		ev := events[i]
		if ev.CorrelationID == "" {
			continue
		}
		switch ev.Kind {
		case core.EventKindCondenseContext:
			ids.condense[ev.CorrelationID] = struct{}{}
			log.Debug("Found condense_context to remove", "condense_id", ev.CorrelationID)
		case core.EventKindSlidingWindowTruncation:
			ids.truncation[ev.CorrelationID] = struct{}{}
			log.Debug("Found sliding_window_truncation to remove", "truncation_id", ev.CorrelationID)
		}
	}
	return ids
}

// dropOrphans removes summaries and truncation markers whose originating
// event is among the removed ids.
func dropOrphans(log logging.Logger, entries []*core.Entry, ids removedIDs) []*core.Entry {
	if ids.empty() {
		return entries
	}
	out := make([]*core.Entry, 0, len(entries))
	for _, e := range entries {
		switch d := e.Derived.(type) {
		case core.Summary:
			if _, gone := ids.condense[d.CondenseID]; gone && d.CondenseID != "" {
				log.Debug("Removing orphaned summary", "condense_id", d.CondenseID)
				continue
			}
		case core.TruncationMarker:
			if _, gone := ids.truncation[d.TruncationID]; gone && d.TruncationID != "" {
				log.Debug("Removing orphaned truncation marker", "truncation_id", d.TruncationID)
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// transcriptChanged compares by pointer identity. Retained entries are the
// same pointers, so a length or position mismatch means a real change.
func transcriptChanged(before, after []*core.Entry) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}
