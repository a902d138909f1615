package core

import (
	"context"
	"time"
)

// SnapshotPhase tells whether a diagnostic snapshot was taken before or after
// the transcript was mutated.
type SnapshotPhase string

const (
	SnapshotPre  SnapshotPhase = "pre"
	SnapshotPost SnapshotPhase = "post"
)

// Snapshot is an audit copy of the transcript around an anchored range
// deletion. Both phases of one deletion share RunID.
type Snapshot struct {
	Phase           SnapshotPhase
	Operation       string
	RunID           string
	AnchorTimestamp int64
	AnchorKind      EventKind
	Transcript      []*Entry
	ExportedAt      time.Time
}

// SnapshotExporter writes diagnostic snapshots to an external sink. Callers
// treat it as best effort: errors are logged and never alter a rewind.
type SnapshotExporter interface {
	ExportSnapshot(ctx context.Context, snap Snapshot) error
}
