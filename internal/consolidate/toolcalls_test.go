package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertToolCallsByCallID(t *testing.T) {
	existing := []ToolCallRecord{{"tool_call_id": "c1", "tool_name": "search", "arguments": "q"}}
	merged := UpsertToolCalls(existing, []ToolCallRecord{{"tool_call_id": "c1", "result": "ok"}})

	require.Len(t, merged, 1)
	assert.Equal(t, "search", merged[0]["tool_name"])
	assert.Equal(t, "q", merged[0]["arguments"])
	assert.Equal(t, "ok", merged[0]["result"])
}

func TestUpsertToolCallsNewFieldsWin(t *testing.T) {
	existing := []ToolCallRecord{{"tool_call_id": "c1", "result": "stale"}}
	merged := UpsertToolCalls(existing, []ToolCallRecord{{"tool_call_id": "c1", "result": "fresh"}})

	require.Len(t, merged, 1)
	assert.Equal(t, "fresh", merged[0]["result"])
}

func TestUpsertToolCallsFallbackIdentity(t *testing.T) {
	// No call id: identity is name plus creation timestamp.
	existing := []ToolCallRecord{{"tool_name": "search", "created_at": float64(10)}}

	sameCall := UpsertToolCalls(existing, []ToolCallRecord{{"tool_name": "search", "created_at": float64(10), "result": "ok"}})
	require.Len(t, sameCall, 1)
	assert.Equal(t, "ok", sameCall[0]["result"])

	differentCall := UpsertToolCalls(existing, []ToolCallRecord{{"tool_name": "search", "created_at": float64(20)}})
	assert.Len(t, differentCall, 2)
}

func TestUpsertToolCallsAppendsUnmatched(t *testing.T) {
	merged := UpsertToolCalls(nil, []ToolCallRecord{
		{"tool_call_id": "c1"},
		{"tool_call_id": "c2"},
	})
	assert.Len(t, merged, 2)
}

func TestUpsertToolCallsDoesNotMutateExisting(t *testing.T) {
	existing := []ToolCallRecord{{"tool_call_id": "c1", "result": "old"}}
	_ = UpsertToolCalls(existing, []ToolCallRecord{{"tool_call_id": "c1", "result": "new"}})
	assert.Equal(t, "old", existing[0]["result"])
}
