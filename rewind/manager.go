package rewind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/rewindmesh/condense"
	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/logging"
)

// Options configures a Manager.
type Options struct {
	// Cleanup repairs dangling parent tags after entries were removed.
	// Defaults to condense.CleanupAfterTruncation.
	Cleanup func([]*core.Entry) []*core.Entry

	// Exporter receives pre/post transcript snapshots around anchored range
	// deletions when ExportOnAnchorDelete is set. Nil disables export.
	Exporter             core.SnapshotExporter
	ExportOnAnchorDelete bool

	Logger logging.Logger

	// Now and NewRunID are injectable for deterministic tests.
	Now      func() time.Time
	NewRunID func() string
}

// RewindOptions tunes RewindToTimestamp and RewindToIndex. The zero value
// is the default.
type RewindOptions struct {
	// IncludeTargetMessage keeps the event at the target timestamp in the
	// event log (edit flow). By default the target is removed together with
	// everything after it (delete flow).
	IncludeTargetMessage bool
	// SkipCleanup skips the parent-tag cleanup pass for callers that run
	// their own cleanup afterwards.
	SkipCleanup bool
}

// Manager is the single entry point for destructive edits of a
// conversation's history. It keeps the event log and the transcript free of
// orphaned summaries, truncation markers and parent tags.
//
// A Manager holds no history state of its own; every call reads the current
// logs from the injected core.History. Calls on the same history must not
// overlap, serializing them is the owner's job.
type Manager struct {
	history core.History
	opts    Options
	exports sync.WaitGroup
}

// New creates a Manager operating on h.
func New(h core.History, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Cleanup:  condense.CleanupAfterTruncation,
		Logger:   logging.NoOpLogger{},
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Manager{history: h, opts: opts}
}

// Wait blocks until all in-flight diagnostic exports have returned.
func (m *Manager) Wait() { m.exports.Wait() }

func (m *Manager) exportEnabled() bool {
	return m.opts.Exporter != nil && m.opts.ExportOnAnchorDelete
}

// exportSnapshot hands snap to the exporter on its own goroutine. Failures
// and panics are logged and never reach the caller.
func (m *Manager) exportSnapshot(ctx context.Context, snap core.Snapshot) {
	ctx = context.WithoutCancel(ctx)
	m.exports.Add(1)
	go func() {
		defer m.exports.Done()
		defer func() {
			if r := recover(); r != nil {
				m.opts.Logger.Error("Snapshot export panicked", "phase", snap.Phase, "run_id", snap.RunID, "panic", fmt.Sprint(r))
			}
		}()
		if err := m.opts.Exporter.ExportSnapshot(ctx, snap); err != nil {
			m.opts.Logger.Error("Failed to export transcript snapshot", "phase", snap.Phase, "run_id", snap.RunID, "error", err.Error())
		}
	}()
}
