package checkpoint_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansiraturi/travelbot/pkg/travelbot/checkpoint"
)

// TestNew verifies snapshot construction fills metadata.
func TestNew(t *testing.T) {
	state := []byte(`{"stage":"validate"}`)
	snap := checkpoint.New("conv-1", "validate", 3, state)

	assert.Equal(t, checkpoint.SchemaVersion, snap.SchemaVersion)
	assert.Equal(t, "conv-1", snap.ConversationID)
	assert.Equal(t, "validate", snap.Stage)
	assert.Equal(t, 3, snap.Sequence)
	assert.False(t, snap.Timestamp.IsZero())
	assert.Equal(t, json.RawMessage(state), snap.State)
}

// TestMarshalRoundtrip verifies a snapshot survives serialization.
func TestMarshalRoundtrip(t *testing.T) {
	snap := checkpoint.New("conv-1", "search_flights", 5, []byte(`{"x":1}`))

	data, err := snap.Marshal()
	require.NoError(t, err)

	got, err := checkpoint.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, snap.ConversationID, got.ConversationID)
	assert.Equal(t, snap.Stage, got.Stage)
	assert.Equal(t, snap.Sequence, got.Sequence)
	assert.JSONEq(t, `{"x":1}`, string(got.State))
}

// TestUnmarshalVersionMismatch verifies the schema version guard.
func TestUnmarshalVersionMismatch(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"future version", `{"schema_version":99,"conversation_id":"c","stage":"s","sequence":1,"state":{}}`},
		{"zero version", `{"conversation_id":"c","stage":"s","sequence":1,"state":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkpoint.Unmarshal([]byte(tt.data))
			assert.ErrorIs(t, err, checkpoint.ErrSchemaVersion)
		})
	}
}

// TestUnmarshalInvalidJSON verifies malformed bytes are rejected.
func TestUnmarshalInvalidJSON(t *testing.T) {
	_, err := checkpoint.Unmarshal([]byte("not json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, checkpoint.ErrSchemaVersion)
}
