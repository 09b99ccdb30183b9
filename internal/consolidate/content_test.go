package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEventAppendsStringContent(t *testing.T) {
	var msg MessageSnapshot
	for _, fragment := range []string{"Hel", "lo ", "world"} {
		msg = ApplyEventToMessage(msg, event("RunContent", "run-1", map[string]any{"content": fragment}), false)
	}
	assert.Equal(t, "Hello world", msg.Text)
}

func TestApplyEventObjectContentReplaces(t *testing.T) {
	msg := ApplyEventToMessage(MessageSnapshot{}, event("RunContent", "run-1", map[string]any{"content": "partial text"}), false)
	msg = ApplyEventToMessage(msg, event("RunContent", "run-1", map[string]any{"content": map[string]any{"answer": 1}}), false)
	first := msg.Text
	assert.Contains(t, first, `"answer": 1`)
	assert.NotContains(t, first, "partial text")

	// A second object payload is a complete replacement unit, not an append.
	msg = ApplyEventToMessage(msg, event("RunContent", "run-1", map[string]any{"content": map[string]any{"answer": 2}}), false)
	assert.Contains(t, msg.Text, `"answer": 2`)
	assert.NotContains(t, msg.Text, `"answer": 1`)
}

func TestApplyEventReasoningObjectContentStaysStructured(t *testing.T) {
	msg := ApplyEventToMessage(MessageSnapshot{Text: "existing"}, event("ReasoningStep", "r1", map[string]any{
		"content": map[string]any{"title": "thinking"},
	}), false)

	// Reasoning payloads are preserved as data, never flattened into text.
	assert.Equal(t, "existing", msg.Text)
	require.Len(t, msg.ReasoningSteps, 1)
	assert.Equal(t, map[string]any{"title": "thinking"}, msg.ReasoningSteps[0])
}

func TestApplyEventTranscriptAccumulates(t *testing.T) {
	var msg MessageSnapshot
	msg = ApplyEventToMessage(msg, event("RunContent", "run-1", map[string]any{
		"content":        "text",
		"response_audio": map[string]any{"transcript": "Hel"},
	}), false)
	msg = ApplyEventToMessage(msg, event("RunContent", "run-1", map[string]any{
		"response_audio": map[string]any{"transcript": "lo"},
	}), false)

	assert.Equal(t, "Hello", msg.Transcript)
	assert.Equal(t, "text", msg.Text)
}

func TestApplyEventMediaLastWriteWins(t *testing.T) {
	withImage := event("RunContent", "run-1", map[string]any{"images": []any{"a.png"}})
	noMedia := event("RunContent", "run-1", map[string]any{"content": "more"})
	twoImages := event("RunCompleted", "run-1", map[string]any{"images": []any{"a.png", "b.png"}})

	msg := ApplyEventToMessage(MessageSnapshot{}, withImage, false)
	require.Len(t, msg.Images, 1)

	// An event without the field leaves the previous value alone.
	msg = ApplyEventToMessage(msg, noMedia, false)
	require.Len(t, msg.Images, 1)

	msg = ApplyEventToMessage(msg, twoImages, false)
	assert.Len(t, msg.Images, 2)
}

func TestApplyEventTimestampLastWriteWins(t *testing.T) {
	msg := ApplyEventToMessage(MessageSnapshot{}, event("RunStarted", "run-1", map[string]any{"created_at": float64(100)}), false)
	assert.Equal(t, float64(100), msg.CreatedAt)

	msg = ApplyEventToMessage(msg, event("RunContent", "run-1", map[string]any{"content": "x"}), false)
	assert.Equal(t, float64(100), msg.CreatedAt)

	msg = ApplyEventToMessage(msg, event("RunCompleted", "run-1", map[string]any{"created_at": float64(200)}), false)
	assert.Equal(t, float64(200), msg.CreatedAt)
}

func TestApplyEventUpsertsToolCalls(t *testing.T) {
	started := event("ToolCallStarted", "ToolCallStarted_c1", map[string]any{
		"tool": map[string]any{"tool_call_id": "c1", "tool_name": "search", "arguments": "q"},
	})
	completed := event("ToolCallCompleted", "ToolCallCompleted_c1", map[string]any{
		"tool": map[string]any{"tool_call_id": "c1", "result": "found"},
	})

	msg := ApplyEventToMessage(MessageSnapshot{}, started, false)
	msg = ApplyEventToMessage(msg, completed, false)

	require.Len(t, msg.ToolCalls, 1)
	// Shallow merge: new result arrives, old name and arguments survive.
	assert.Equal(t, "search", msg.ToolCalls[0]["tool_name"])
	assert.Equal(t, "q", msg.ToolCalls[0]["arguments"])
	assert.Equal(t, "found", msg.ToolCalls[0]["result"])
}

func TestApplyEventReasoningRicherWins(t *testing.T) {
	msg := ApplyEventToMessage(MessageSnapshot{}, event("ReasoningStep", "r1", reasoningPayload(2)), false)
	require.Len(t, msg.ReasoningSteps, 2)

	// Authoritative completion with fewer items loses to richer content.
	msg = ApplyEventToMessage(msg, event("ReasoningCompleted", "ReasoningCompleted_r1", reasoningPayload(0)), false)
	assert.Len(t, msg.ReasoningSteps, 2)

	msg = ApplyEventToMessage(msg, event("ReasoningCompleted", "ReasoningCompleted_r1", reasoningPayload(3)), false)
	assert.Len(t, msg.ReasoningSteps, 3)

	// A stale partial after the completion is ignored.
	msg = ApplyEventToMessage(msg, event("ReasoningStep", "r1", reasoningPayload(1)), false)
	assert.Len(t, msg.ReasoningSteps, 3)
}

func TestApplyEventToleratesNilPayload(t *testing.T) {
	msg := ApplyEventToMessage(MessageSnapshot{Text: "keep"}, event("RunCompleted", "run-1", nil), false)
	assert.Equal(t, "keep", msg.Text)
}
