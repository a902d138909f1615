// Package rewindmesh provides a high-level façade over the history stores and
// the rewind engine. Most applications interact with this package by:
//  1. Creating a Service via New() (optionally overriding the default in‑memory stores)
//  2. Opening a Conversation per session and appending events and entries to it
//  3. Deleting turns (DeleteAnchorRange) or rewinding (RewindToTimestamp,
//     RewindToIndex) through the Conversation
//
// A Conversation owns both ledgers of one session and serializes every
// mutation, so the event log and the transcript are always edited together.
// All defaults are safe for local development and testing; production
// deployments typically supply a durable store (session/sqlite), an artifact
// store for diagnostic snapshots and a structured logger.
package rewindmesh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/rewindmesh/artifact"
	"github.com/hupe1980/rewindmesh/condense"
	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/logging"
	"github.com/hupe1980/rewindmesh/session"
)

// Options configures the Service.
type Options struct {
	// Stores (defaults to in-memory implementations if not provided)
	Store     core.HistoryStore
	Artifacts core.ArtifactStore

	// ExportOnAnchorDelete writes pre/post transcript snapshots to Artifacts
	// around every DeleteAnchorRange.
	ExportOnAnchorDelete bool

	// Cleanup overrides the parent-tag cleanup used after deletions.
	Cleanup func([]*core.Entry) []*core.Entry

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Service hands out one Conversation per session.
type Service struct {
	opts Options

	mu            sync.Mutex
	conversations map[string]*Conversation
}

// New creates a new Service with optional overrides. Any unset store is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Service {
	opts := Options{
		Store:     session.NewInMemoryStore(),
		Artifacts: artifact.NewInMemoryStore(),
		Cleanup:   condense.CleanupAfterTruncation,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Service{opts: opts, conversations: make(map[string]*Conversation)}
}

// Open returns the Conversation for sessionID, loading it from the store on
// first use. Unknown sessions are created. Repeated calls return the same
// handle.
func (s *Service) Open(ctx context.Context, sessionID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conversations[sessionID]; ok {
		return c, nil
	}

	sess, err := s.opts.Store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		sess, err = s.opts.Store.Create(ctx, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", sessionID, err)
	}

	c := newConversation(sessionID, sess, s.opts)
	s.conversations[sessionID] = c
	return c, nil
}

// Wait blocks until the diagnostic exports of all open conversations have
// finished.
func (s *Service) Wait() {
	s.mu.Lock()
	conversations := make([]*Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		conversations = append(conversations, c)
	}
	s.mu.Unlock()

	for _, c := range conversations {
		c.Wait()
	}
}

func sessionLogger(l logging.Logger, sessionID string) logging.Logger {
	if sl, ok := l.(*logging.StructuredLogger); ok {
		return sl.WithSession(sessionID).WithComponent("rewind")
	}
	return l
}
