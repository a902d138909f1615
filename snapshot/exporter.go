// Package snapshot writes diagnostic transcript snapshots to a
// core.ArtifactStore.
//
// Each snapshot becomes one indented JSON artifact:
//
//	{
//	  "meta": {"operation": ..., "when": "pre", "runId": ..., ...},
//	  "apiHistory": [ ...transcript entries... ]
//	}
//
// Assistant reasoning payloads are stripped before writing.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/rewindmesh/core"
)

var _ core.SnapshotExporter = (*ArtifactExporter)(nil)

// Meta describes where a snapshot came from.
type Meta struct {
	Operation  string             `json:"operation"`
	When       core.SnapshotPhase `json:"when"`
	RunID      string             `json:"runId"`
	AnchorTs   int64              `json:"anchorTs"`
	AnchorKind core.EventKind     `json:"anchorKind"`
	ExportedAt int64              `json:"exportedAt"`
}

// Payload is the serialized snapshot document.
type Payload struct {
	Meta       Meta          `json:"meta"`
	APIHistory []*core.Entry `json:"apiHistory"`
}

// Options configures an ArtifactExporter.
type Options struct {
	// Indent is the JSON indentation. Empty writes compact JSON.
	Indent string
	// StripReasoning removes reasoning payloads from assistant entries.
	StripReasoning bool
}

// ArtifactExporter implements core.SnapshotExporter on top of an
// ArtifactStore scoped to one session.
type ArtifactExporter struct {
	store     core.ArtifactStore
	sessionID string
	opts      Options
}

// NewArtifactExporter creates an exporter writing into store under sessionID.
func NewArtifactExporter(store core.ArtifactStore, sessionID string, optFns ...func(o *Options)) *ArtifactExporter {
	opts := Options{
		Indent:         "  ",
		StripReasoning: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ArtifactExporter{store: store, sessionID: sessionID, opts: opts}
}

// ArtifactID returns the artifact name used for snap.
func ArtifactID(snap core.Snapshot) string {
	return fmt.Sprintf("apiHistory-%s-%s-%s-%d-%s.json",
		snap.Phase, snap.Operation, snap.AnchorKind, snap.AnchorTimestamp, snap.RunID)
}

// Encode renders snap as a Payload document.
func (x *ArtifactExporter) Encode(snap core.Snapshot) ([]byte, error) {
	history := make([]*core.Entry, len(snap.Transcript))
	for i, e := range snap.Transcript {
		if x.opts.StripReasoning && e.Role == core.RoleAssistant {
			e = e.WithoutReasoning()
		}
		history[i] = e
	}

	p := Payload{
		Meta: Meta{
			Operation:  snap.Operation,
			When:       snap.Phase,
			RunID:      snap.RunID,
			AnchorTs:   snap.AnchorTimestamp,
			AnchorKind: snap.AnchorKind,
			ExportedAt: snap.ExportedAt.UnixMilli(),
		},
		APIHistory: history,
	}
	if x.opts.Indent == "" {
		return json.Marshal(p)
	}
	return json.MarshalIndent(p, "", x.opts.Indent)
}

// ExportSnapshot encodes snap and saves it as an artifact.
func (x *ArtifactExporter) ExportSnapshot(ctx context.Context, snap core.Snapshot) error {
	data, err := x.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	id := ArtifactID(snap)
	if err := x.store.Save(ctx, x.sessionID, id, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	return nil
}
