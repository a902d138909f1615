package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rewindmesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.HistoryStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetCreatesLazily(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Empty(t, sess.GetEvents())

	require.NoError(t, store.AppendEvent(ctx, "s1", core.Event{Timestamp: 1, Kind: core.EventKindUserFeedback}))
	sess, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, sess.GetEvents(), 1)
}

func TestInMemoryStore_AppendAndOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	a := core.NewEntry(core.RoleUser, 1, "a")
	b := core.NewEntry(core.RoleAssistant, 2, "b")
	require.NoError(t, store.AppendEntry(ctx, "s1", a))
	require.NoError(t, store.AppendEntry(ctx, "s1", b))
	require.NoError(t, store.AppendEvent(ctx, "s1", core.Event{Timestamp: 1, Kind: core.EventKindUserFeedback}))
	require.NoError(t, store.AppendEvent(ctx, "s1", core.Event{Timestamp: 2, Kind: core.EventKindText}))

	require.NoError(t, store.OverwriteTranscript(ctx, "s1", []*core.Entry{b}))
	require.NoError(t, store.OverwriteEvents(ctx, "s1", []core.Event{{Timestamp: 2, Kind: core.EventKindText}}))

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []*core.Entry{b}, sess.GetTranscript())
	require.Len(t, sess.GetEvents(), 1)
	assert.Equal(t, int64(2), sess.GetEvents()[0].Timestamp)
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.AppendEvent(ctx, "s1", core.Event{Timestamp: 1}))

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	sess.AddEvent(core.Event{Timestamp: 2})

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, again.GetEvents(), 1)
}

func TestInMemoryStore_CreateResets(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.AppendEntry(ctx, "s1", core.NewEntry(core.RoleUser, 1, "x")))

	sess, err := store.Create(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, sess.GetTranscript())
}
