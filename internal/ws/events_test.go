package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		var payload SendMessagePayload
		require.NoError(t, json.Unmarshal([]byte(`{"receiver_id": 5, "content": "hi"}`), &payload))
		assert.Equal(t, int64(5), payload.ReceiverID.Int64())
	})

	t.Run("quoted string", func(t *testing.T) {
		var payload SendMessagePayload
		require.NoError(t, json.Unmarshal([]byte(`{"receiver_id": "5", "content": "hi"}`), &payload))
		assert.Equal(t, int64(5), payload.ReceiverID.Int64())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		var payload SendMessagePayload
		assert.Error(t, json.Unmarshal([]byte(`{"receiver_id": "abc"}`), &payload))
	})
}
