package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists snapshots to SQLite, one row per conversation.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite snapshot store.
// The path should be a file path (e.g., "./travelbot.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT PRIMARY KEY,
			stage TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			data BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_conversations_updated_at
		ON conversations(updated_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (conversation_id, stage, sequence, updated_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			stage = excluded.stage,
			sequence = excluded.sequence,
			updated_at = excluded.updated_at,
			data = excluded.data
	`, snap.ConversationID, snap.Stage, snap.Sequence,
		snap.Timestamp.UTC().Format(time.RFC3339Nano), data)

	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, conversationID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM conversations
		WHERE conversation_id = ?
	`, conversationID).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return Unmarshal(data)
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, stage, sequence, updated_at, LENGTH(data)
		FROM conversations
		ORDER BY updated_at DESC, conversation_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		var updatedAt string
		if err := rows.Scan(&info.ConversationID, &info.Stage, &info.Sequence, &updatedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan conversation info: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM conversations WHERE conversation_id = ?
	`, conversationID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
