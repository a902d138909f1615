// Package core provides the foundational domain types and contracts used by
// rewindmesh. It defines:
//
//   - Events (the UI-facing log; turn anchors, condense and truncation markers)
//   - Entries (the model-facing transcript; plain turns and derived summaries
//     or truncation markers linked to events by correlation id)
//   - Sessions (the owner of both ledgers)
//   - History / HistoryStore / ArtifactStore / SnapshotExporter contracts
//
// Implementation concerns (persistence, the rewind engine, diagnostic sinks)
// live in sibling packages and depend on these small interfaces so backends
// can be swapped without touching calling code.
package core
