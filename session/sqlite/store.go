// Package sqlite persists conversation histories in an embedded SQLite
// database through database/sql and the pure Go modernc.org/sqlite driver.
//
// Both ledgers are stored one row per item, ordered by a per-session sequence
// number, with the item itself encoded in the core JSON wire format. Overwrites
// delete and re-insert inside a single transaction, so a reader never sees a
// partially replaced log.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/rewindmesh/core"
	"github.com/hupe1980/rewindmesh/session"
)

var _ core.HistoryStore = (*Store)(nil)

// Store implements core.HistoryStore on a *sql.DB opened with the "sqlite"
// driver.
type Store struct {
	db *sql.DB
}

// NewStore creates the schema if needed and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}
	return s, nil
}

// Open opens (or creates) the database file at path and returns a Store.
// SQLite allows a single writer, so the pool is limited to one connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created TEXT NOT NULL,
		updated TEXT NOT NULL,
		metadata TEXT
	);
	CREATE TABLE IF NOT EXISTS events (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	CREATE TABLE IF NOT EXISTS transcript (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// Create creates the session, discarding any history stored under id.
func (s *Store) Create(ctx context.Context, id string) (*core.Session, error) {
	sess := core.NewSession(id)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"events", "transcript"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, id); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, created, updated, metadata) VALUES (?, ?, ?, '{}')
			ON CONFLICT(id) DO UPDATE SET created = excluded.created, updated = excluded.updated, metadata = '{}'`,
			id, formatTime(sess.Created), formatTime(sess.Updated))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}
	return sess, nil
}

// Get loads the session with both ledgers or returns session.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*core.Session, error) {
	var created, updated string
	var metadata sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT created, updated, metadata FROM sessions WHERE id = ?`, id,
	).Scan(&created, &updated, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	sess := core.NewSession(id)
	sess.Created, _ = time.Parse(time.RFC3339Nano, created)
	sess.Updated, _ = time.Parse(time.RFC3339Nano, updated)
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &sess.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of session %s: %w", id, err)
		}
	}

	if err := s.scanLog(ctx, "events", id, func(payload []byte) error {
		var ev core.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		sess.Events = append(sess.Events, ev)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load events of session %s: %w", id, err)
	}

	if err := s.scanLog(ctx, "transcript", id, func(payload []byte) error {
		e := new(core.Entry)
		if err := json.Unmarshal(payload, e); err != nil {
			return err
		}
		sess.Transcript = append(sess.Transcript, e)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load transcript of session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Store) scanLog(ctx context.Context, table, id string, fn func(payload []byte) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM `+table+` WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		if err := fn(payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AppendEvent appends ev to the session's event log, creating the session if
// it does not exist.
func (s *Store) AppendEvent(ctx context.Context, sessionID string, ev core.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		return appendRow(ctx, tx, "events", sessionID, payload)
	}); err != nil {
		return fmt.Errorf("append event to session %s: %w", sessionID, err)
	}
	return nil
}

// AppendEntry appends e to the session's transcript, creating the session if
// it does not exist.
func (s *Store) AppendEntry(ctx context.Context, sessionID string, e *core.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		return appendRow(ctx, tx, "transcript", sessionID, payload)
	}); err != nil {
		return fmt.Errorf("append entry to session %s: %w", sessionID, err)
	}
	return nil
}

// OverwriteEvents atomically replaces the session's event log.
func (s *Store) OverwriteEvents(ctx context.Context, sessionID string, events []core.Event) error {
	payloads := make([][]byte, len(events))
	for i, ev := range events {
		p, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %d: %w", i, err)
		}
		payloads[i] = p
	}
	if err := s.overwrite(ctx, "events", sessionID, payloads); err != nil {
		return fmt.Errorf("overwrite events of session %s: %w", sessionID, err)
	}
	return nil
}

// OverwriteTranscript atomically replaces the session's transcript.
func (s *Store) OverwriteTranscript(ctx context.Context, sessionID string, entries []*core.Entry) error {
	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		p, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
		payloads[i] = p
	}
	if err := s.overwrite(ctx, "transcript", sessionID, payloads); err != nil {
		return fmt.Errorf("overwrite transcript of session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Store) overwrite(ctx context.Context, table, sessionID string, payloads [][]byte) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchSession(ctx, tx, sessionID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, sessionID); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+table+` (session_id, seq, payload) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for i, p := range payloads {
			if _, err := stmt.ExecContext(ctx, sessionID, i, string(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

func appendRow(ctx context.Context, tx *sql.Tx, table, sessionID string, payload []byte) error {
	if err := touchSession(ctx, tx, sessionID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO `+table+` (session_id, seq, payload)
		SELECT ?, COALESCE(MAX(seq) + 1, 0), ? FROM `+table+` WHERE session_id = ?`,
		sessionID, string(payload), sessionID)
	return err
}

// touchSession creates the session row if missing and bumps its update time.
func touchSession(ctx context.Context, tx *sql.Tx, sessionID string) error {
	now := formatTime(time.Now())
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created, updated, metadata) VALUES (?, ?, ?, '{}')
		ON CONFLICT(id) DO UPDATE SET updated = excluded.updated`,
		sessionID, now, now)
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
