// Package rewind implements the history rewind engine: the single place where
// a conversation's event log and transcript are cut back after a delete, an
// edit or a checkpoint restore.
//
// Context management links the two logs. A condense_context event produces a
// Summary entry and a sliding_window_truncation event produces a
// TruncationMarker entry, each carrying the event's correlation id. Every
// operation therefore:
//
//  1. collects the correlation ids of the events about to be removed,
//  2. cuts the event log,
//  3. cuts the transcript and drops derived entries whose event is gone,
//  4. clears parent tags that now point nowhere,
//  5. writes each log back only if it actually changed.
//
// The two writes are not a transaction: if the process dies between them the
// logs can diverge.
package rewind
