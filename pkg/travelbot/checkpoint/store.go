// Package checkpoint persists conversation snapshots so interrupted
// conversations can resume at their last completed node.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Store persists the latest snapshot per conversation.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the snapshot for a conversation, replacing any
	// prior snapshot for the same conversation ID.
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves the latest snapshot for a conversation.
	// Returns ErrNotFound if the conversation has none.
	Load(ctx context.Context, conversationID string) (*Snapshot, error)

	// List returns metadata for all stored conversations, most
	// recently updated first. Returns an empty slice if none exist.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a conversation's snapshot.
	// Returns nil if the conversation doesn't exist.
	Delete(ctx context.Context, conversationID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides snapshot metadata without loading the full state.
type Info struct {
	ConversationID string
	Stage          string
	Sequence       int
	UpdatedAt      time.Time
	Size           int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no snapshot exists for a conversation.
	ErrNotFound = errors.New("conversation snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
