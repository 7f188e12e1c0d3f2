package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SchemaVersion is the current snapshot format version.
// Increment when making breaking changes to the snapshot structure.
const SchemaVersion = 1

// ErrSchemaVersion indicates a stored snapshot was written with an
// incompatible format version. Loading such a snapshot never silently
// reinterprets the payload.
var ErrSchemaVersion = errors.New("checkpoint schema version mismatch")

// Snapshot is the persisted record of a conversation after a node
// execution. It carries everything needed to resume: the stage to run
// next and the full serialized conversation state.
type Snapshot struct {
	SchemaVersion  int       `json:"schema_version"`
	ConversationID string    `json:"conversation_id"`
	Stage          string    `json:"stage"`
	Sequence       int       `json:"sequence"`
	Timestamp      time.Time `json:"timestamp"`

	// State is the opaque serialized ConversationState.
	State json.RawMessage `json:"state"`
}

// New creates a snapshot for a conversation paused at stage.
// State must already be JSON-serialized.
func New(conversationID, stage string, sequence int, state []byte) *Snapshot {
	return &Snapshot{
		SchemaVersion:  SchemaVersion,
		ConversationID: conversationID,
		Stage:          stage,
		Sequence:       sequence,
		Timestamp:      time.Now().UTC(),
		State:          state,
	}
}

// Marshal serializes a snapshot to JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes a snapshot and verifies its schema version.
// A version mismatch returns ErrSchemaVersion rather than a
// misinterpreted snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, s.SchemaVersion, SchemaVersion)
	}
	return &s, nil
}
