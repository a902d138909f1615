// Package artifact contains concrete implementations of core.ArtifactStore.
// The rewind engine uses them as sinks for diagnostic transcript snapshots.
//
// The canonical interface lives in the core package to avoid dependency
// cycles. InMemoryStore suits tests, FileStore writes plain files on the
// local disk, and the s3 sub-package targets S3-compatible object storage.
package artifact
