package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	message_type TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_chat_history_session ON chat_history(session_id);
`

// SQLiteStore keeps the turn log in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the store at path and applies the
// schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	// The runtime serializes writes per session, but history fetches can
	// race an append from another command; a single connection sidesteps
	// SQLITE_BUSY for this workload.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("applying store schema: %w", err)
	}

	logger.Debug("store opened", "path", filepath.Clean(path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Append inserts one turn row. The timestamp is assigned by the database.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, messageType, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (session_id, message_type, content) VALUES (?, ?, ?)`,
		sessionID, messageType, content,
	)
	if err != nil {
		return fmt.Errorf("appending turn for session %s: %w", sessionID, err)
	}
	return nil
}

// History returns all persisted turns for a session in insertion order.
func (s *SQLiteStore) History(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, message_type, content, created_at
		 FROM chat_history
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching history for session %s: %w", sessionID, err)
	}
	defer rows.Close() //nolint:errcheck

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.SessionID, &r.MessageType, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return records, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
