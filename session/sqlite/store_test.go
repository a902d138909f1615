package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/session"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetUnknownSession(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "h.db"))
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_AppendRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "h.db"))

	events := []core.Event{
		{Timestamp: 100, Kind: core.EventKindUserFeedback, Text: "hi"},
		{Timestamp: 110, Kind: core.EventKindCondenseContext, CorrelationID: "c1"},
		{Timestamp: 120, Kind: core.EventKindSlidingWindowTruncation, CorrelationID: "t1"},
	}
	call := core.NewEntry(core.RoleAssistant, 105, "")
	call.Parts = []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "tu1", Name: "read", Arguments: `{"path":"a"}`}}}
	child := core.NewEntry(core.RoleUser, 101, "question")
	child.CondenseParent = "c1"
	entries := []*core.Entry{
		child,
		call,
		core.NewSummaryEntry(111, "c1", "summary"),
		core.NewTruncationMarkerEntry(121, "t1", "truncated"),
	}

	for _, ev := range events {
		require.NoError(t, s.AppendEvent(ctx, "s1", ev))
	}
	for _, e := range entries {
		require.NoError(t, s.AppendEntry(ctx, "s1", e))
	}

	sess, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, events, sess.GetEvents())
	assert.Equal(t, entries, sess.GetTranscript())
}

func TestStore_OverwriteReplacesInOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "h.db"))

	for ts := int64(1); ts <= 5; ts++ {
		require.NoError(t, s.AppendEvent(ctx, "s1", core.Event{Timestamp: ts, Kind: core.EventKindText}))
		require.NoError(t, s.AppendEntry(ctx, "s1", core.NewEntry(core.RoleUser, ts, "x")))
	}

	require.NoError(t, s.OverwriteEvents(ctx, "s1", []core.Event{
		{Timestamp: 4, Kind: core.EventKindText},
		{Timestamp: 2, Kind: core.EventKindText},
	}))
	require.NoError(t, s.OverwriteTranscript(ctx, "s1", []*core.Entry{core.NewEntry(core.RoleUser, 3, "x")}))

	// Appends continue after the rewritten log.
	require.NoError(t, s.AppendEvent(ctx, "s1", core.Event{Timestamp: 9, Kind: core.EventKindText}))

	sess, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	var got []int64
	for _, ev := range sess.GetEvents() {
		got = append(got, ev.Timestamp)
	}
	assert.Equal(t, []int64{4, 2, 9}, got)
	require.Len(t, sess.GetTranscript(), 1)
	assert.Equal(t, int64(3), sess.GetTranscript()[0].Timestamp)

	require.NoError(t, s.OverwriteTranscript(ctx, "s1", nil))
	sess, err = s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, sess.GetTranscript())
}

func TestStore_CreateResetsAndIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "h.db"))

	require.NoError(t, s.AppendEvent(ctx, "s1", core.Event{Timestamp: 1, Kind: core.EventKindText}))
	require.NoError(t, s.AppendEvent(ctx, "s2", core.Event{Timestamp: 2, Kind: core.EventKindText}))

	created, err := s.Create(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)

	sess, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, sess.GetEvents())

	other, err := s.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, other.GetEvents(), 1)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "h.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendEntry(ctx, "s1", core.NewEntry(core.RoleUser, 7, "kept")))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	sess, err := reopened.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sess.GetTranscript(), 1)
	assert.Equal(t, "kept", core.Text(sess.GetTranscript()[0].Parts))
}
