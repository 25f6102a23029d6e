// Package sqlitestore persists conversation turns in a SQLite database, one
// row per turn, ordered by an explicit per-session sequence number.
package sqlitestore

import (
	"database/sql"
	"fmt"
	"sync"

	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	"github.com/mfalcone/eva"
)

// Store is a SQLite-backed eva.Store. Safe for concurrent use; writes are
// serialized so sequence numbers stay gapless per session.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens the database at path, creating it and the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: opening %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlitestore: %s: %w", pragma, err)
		}
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		session_id  TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		payload     TEXT NOT NULL,
		created_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		PRIMARY KEY (session_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlitestore: initializing schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append adds a turn to the session's history.
func (s *Store) Append(sessionID string, t eva.Turn) error {
	data, err := eva.MarshalTurn(t)
	if err != nil {
		return fmt.Errorf("sqlitestore: encoding turn: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var kind string
	switch t.(type) {
	case eva.UserTurn:
		kind = "user"
	case eva.AssistantTurn:
		kind = "assistant"
	case eva.ToolTurn:
		kind = "tool"
	}

	_, err = s.db.Exec(`
		INSERT INTO turns (session_id, seq, kind, payload)
		VALUES (?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM turns WHERE session_id = ?), ?, ?)`,
		sessionID, sessionID, kind, string(data))
	if err != nil {
		return fmt.Errorf("sqlitestore: appending turn for session %s: %w", sessionID, err)
	}
	return nil
}

// Snapshot returns the session's ordered turn history. An unknown session
// yields an empty history.
func (s *Store) Snapshot(sessionID string) ([]eva.Turn, error) {
	rows, err := s.db.Query(
		"SELECT payload FROM turns WHERE session_id = ? ORDER BY seq", sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: loading session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []eva.Turn
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlitestore: reading turn: %w", err)
		}
		turn, err := eva.UnmarshalTurn([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: decoding turn for session %s: %w", sessionID, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: iterating session %s: %w", sessionID, err)
	}
	return turns, nil
}

var _ eva.Store = (*Store)(nil)
