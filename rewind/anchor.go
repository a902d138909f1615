package rewind

import (
	"context"
	"time"

	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/logging"
)

const opDeleteAnchorRange = "deleteAnchorRange"

// anchorRole maps an anchor kind to the transcript role of the turn it opens.
func anchorRole(kind core.EventKind) core.Role {
	if kind == core.EventKindUserFeedback {
		return core.RoleUser
	}
	return core.RoleAssistant
}

// DeleteAnchorRange deletes the turn opened by the anchor event stamped
// anchorTs: the events in [anchor, next anchor) and the single transcript
// entry that turn produced, i.e. the first entry after anchorTs whose role
// matches the anchor kind (user_feedback: user, api_req_started: assistant).
//
// Unlike a rewind it never truncates the tail. It may be called
// speculatively: an unknown timestamp, a non-anchor event or a kind mismatch
// yields false without touching either log. Persistence errors are returned
// as is; the event log may then already be written while the transcript is
// not.
func (m *Manager) DeleteAnchorRange(ctx context.Context, anchorTs int64, kind core.EventKind) (bool, error) {
	start := time.Now()
	log := m.opts.Logger

	if !core.IsAnchorKind(kind) {
		log.Warn("deleteAnchorRange: not an anchor kind", "anchor_ts", anchorTs, "anchor_kind", kind)
		return false, nil
	}

	events := m.history.Events()
	startIdx := core.IndexOfTimestamp(events, anchorTs)
	if startIdx == -1 {
		log.Warn("deleteAnchorRange: anchor timestamp not found", "anchor_ts", anchorTs)
		return false, nil
	}
	if anchor := events[startIdx]; !anchor.IsAnchor() || anchor.Kind != kind {
		log.Warn("deleteAnchorRange: event is not an anchor of the requested kind",
			"anchor_ts", anchorTs, "anchor_kind", kind, "event_kind", anchor.Kind)
		return false, nil
	}

	endIdx := len(events)
	for i := startIdx + 1; i < len(events); i++ {
		if events[i].IsAnchor() {
			endIdx = i
			break
		}
	}

	ids := collectCorrelationIDs(log, events, startIdx, endIdx)

	kept := make([]core.Event, 0, len(events)-(endIdx-startIdx))
	kept = append(kept, events[:startIdx]...)
	kept = append(kept, events[endIdx:]...)
	if len(kept) != len(events) {
		if err := m.history.OverwriteEvents(ctx, kept); err != nil {
			logging.LogRewind(log, opDeleteAnchorRange, 0, 0, time.Since(start), err)
			return false, err
		}
	}

	original := m.history.Transcript()
	exporting := m.exportEnabled()
	var runID string
	if exporting {
		runID = m.opts.NewRunID()
		m.exportSnapshot(ctx, m.snapshot(core.SnapshotPre, runID, anchorTs, kind, original))
	}

	entries := make([]*core.Entry, 0, len(original))
	role := anchorRole(kind)
	removed := false
	for _, e := range original {
		if !removed && e.Role == role && e.HasTimestamp() && e.Timestamp > anchorTs {
			removed = true
			continue
		}
		entries = append(entries, e)
	}
	entries = dropOrphans(log, entries, ids)
	entries = m.opts.Cleanup(entries)

	if exporting {
		m.exportSnapshot(ctx, m.snapshot(core.SnapshotPost, runID, anchorTs, kind, entries))
	}

	if transcriptChanged(original, entries) {
		if err := m.history.OverwriteTranscript(ctx, entries); err != nil {
			logging.LogRewind(log, opDeleteAnchorRange, len(events)-len(kept), 0, time.Since(start), err)
			return false, err
		}
	}

	logging.LogRewind(log, opDeleteAnchorRange, len(events)-len(kept), len(original)-len(entries), time.Since(start), nil)
	return true, nil
}

func (m *Manager) snapshot(phase core.SnapshotPhase, runID string, anchorTs int64, kind core.EventKind, entries []*core.Entry) core.Snapshot {
	return core.Snapshot{
		Phase:           phase,
		Operation:       opDeleteAnchorRange,
		RunID:           runID,
		AnchorTimestamp: anchorTs,
		AnchorKind:      kind,
		Transcript:      append([]*core.Entry(nil), entries...),
		ExportedAt:      m.opts.Now(),
	}
}
