package rewindmesh

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/rewindmesh/condense"
	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/rewind"
	"github.com/hupe1980/rewindmesh/snapshot"
)

var _ core.History = (*Conversation)(nil)

// Conversation is the owner of one session's event log and transcript. All
// methods are safe for concurrent use; mutations are serialized.
type Conversation struct {
	id      string
	mu      sync.Mutex
	ledger  *ledger
	manager *rewind.Manager
}

func newConversation(id string, sess *core.Session, opts Options) *Conversation {
	l := &ledger{id: id, store: opts.Store, cache: sess}
	c := &Conversation{id: id, ledger: l}
	c.manager = rewind.New(l, func(o *rewind.Options) {
		if opts.Cleanup != nil {
			o.Cleanup = opts.Cleanup
		}
		o.Logger = sessionLogger(opts.Logger, id)
		if opts.Artifacts != nil {
			o.Exporter = snapshot.NewArtifactExporter(opts.Artifacts, id)
		}
		o.ExportOnAnchorDelete = opts.ExportOnAnchorDelete
	})
	return c
}

// ID returns the session id.
func (c *Conversation) ID() string { return c.id }

// AppendEvent stamps ev with the current time if it has no timestamp and
// appends it to the event log. The stamped event is returned.
func (c *Conversation) AppendEvent(ctx context.Context, ev core.Event) (core.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Timestamp == 0 {
		ev.Timestamp = c.ledger.nextTimestamp()
	}
	if err := c.ledger.store.AppendEvent(ctx, c.id, ev); err != nil {
		return core.Event{}, err
	}
	c.ledger.cache.AddEvent(ev)
	return ev, nil
}

// AppendEntry appends e to the transcript.
func (c *Conversation) AppendEntry(ctx context.Context, e *core.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ledger.store.AppendEntry(ctx, c.id, e); err != nil {
		return err
	}
	c.ledger.cache.AddEntry(e)
	return nil
}

// Events returns a copy of the event log.
func (c *Conversation) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Events()
}

// Transcript returns a copy of the full transcript, including condensed and
// truncated entries.
func (c *Conversation) Transcript() []*core.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Transcript()
}

// EffectiveTranscript returns the entries the model sees.
func (c *Conversation) EffectiveTranscript() []*core.Entry {
	return condense.EffectiveHistory(c.Transcript())
}

// OverwriteEvents replaces the event log.
func (c *Conversation) OverwriteEvents(ctx context.Context, events []core.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.OverwriteEvents(ctx, events)
}

// OverwriteTranscript replaces the transcript.
func (c *Conversation) OverwriteTranscript(ctx context.Context, entries []*core.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.OverwriteTranscript(ctx, entries)
}

// DeleteAnchorRange deletes the turn opened by the anchor at anchorTs. See
// rewind.Manager.DeleteAnchorRange.
func (c *Conversation) DeleteAnchorRange(ctx context.Context, anchorTs int64, kind core.EventKind) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.DeleteAnchorRange(ctx, anchorTs, kind)
}

// RewindToTimestamp truncates both logs at the event stamped ts.
func (c *Conversation) RewindToTimestamp(ctx context.Context, ts int64, opts rewind.RewindOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.RewindToTimestamp(ctx, ts, opts)
}

// RewindToIndex truncates both logs at event index toIndex.
func (c *Conversation) RewindToIndex(ctx context.Context, toIndex int, opts rewind.RewindOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.RewindToIndex(ctx, toIndex, opts)
}

// Wait blocks until in-flight diagnostic exports have finished.
func (c *Conversation) Wait() { c.manager.Wait() }

// ledger is the core.History the rewind engine works on: the store is the
// source of truth and cache mirrors it after every successful write. Callers
// hold Conversation.mu.
type ledger struct {
	id    string
	store core.HistoryStore
	cache *core.Session
}

func (l *ledger) Events() []core.Event { return l.cache.GetEvents() }

func (l *ledger) Transcript() []*core.Entry { return l.cache.GetTranscript() }

func (l *ledger) OverwriteEvents(ctx context.Context, events []core.Event) error {
	if err := l.store.OverwriteEvents(ctx, l.id, events); err != nil {
		return err
	}
	l.cache.ReplaceEvents(events)
	return nil
}

func (l *ledger) OverwriteTranscript(ctx context.Context, entries []*core.Entry) error {
	if err := l.store.OverwriteTranscript(ctx, l.id, entries); err != nil {
		return err
	}
	l.cache.ReplaceTranscript(entries)
	return nil
}

// nextTimestamp returns the current time in unix milliseconds, bumped past
// the last event so timestamps stay unique.
func (l *ledger) nextTimestamp() int64 {
	ts := time.Now().UnixMilli()
	events := l.cache.GetEvents()
	if n := len(events); n > 0 && events[n-1].Timestamp >= ts {
		ts = events[n-1].Timestamp + 1
	}
	return ts
}
