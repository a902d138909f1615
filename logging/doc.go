// Package logging provides a minimal logging interface and adapters for rewindmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the rewind engine and stores use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping an existing *slog.Logger
//   - StructuredLogger with component / session attributes
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false).WithComponent("rewind")
//	svc := rewindmesh.New(func(o *rewindmesh.Options) { o.Logger = logger })
package logging
