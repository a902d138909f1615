// Package session houses concrete implementations of core.HistoryStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts; keeping only implementations here prevents the
// rewind engine from depending on concrete storage.
//
// InMemoryStore serves tests and ephemeral processes. The sqlite sub-package
// persists both ledgers in an embedded database. Additional backends go in
// sub‑packages without changing any calling code.
package session

import "errors"

// ErrNotFound is returned by durable stores when a session does not exist.
var ErrNotFound = errors.New("session not found")
