package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasoningStepsOuterArrayWins(t *testing.T) {
	e := event("ReasoningCompleted", "ReasoningCompleted_r1", map[string]any{
		"reasoning_steps": []any{map[string]any{"title": "outer"}},
		"content": map[string]any{
			"reasoning_steps": []any{map[string]any{"title": "nested"}, map[string]any{"title": "nested2"}},
		},
	})
	steps := ReasoningSteps(e)
	require.Len(t, steps, 1)
	assert.Equal(t, map[string]any{"title": "outer"}, steps[0])
}

func TestReasoningStepsNestedInContent(t *testing.T) {
	e := event("RunCompleted", "run-1", map[string]any{
		"content": map[string]any{
			"reasoning_steps": []any{map[string]any{"title": "nested"}},
		},
	})
	steps := ReasoningSteps(e)
	require.Len(t, steps, 1)
	assert.Equal(t, map[string]any{"title": "nested"}, steps[0])
}

func TestReasoningStepsSingleObjectWrapOnlyForStepEvents(t *testing.T) {
	payload := map[string]any{"content": map[string]any{"title": "thinking"}}

	wrapped := ReasoningSteps(event("ReasoningStep", "r1", payload))
	require.Len(t, wrapped, 1)
	assert.Equal(t, map[string]any{"title": "thinking"}, wrapped[0])

	// The wrap rule is specific to mid-stream reasoning steps; other events
	// with object content carry no reasoning data.
	assert.Nil(t, ReasoningSteps(event("ReasoningCompleted", "ReasoningCompleted_r1", payload)))
	assert.Nil(t, ReasoningSteps(event("RunContent", "run-1", payload)))
}

func TestReasoningStepsNone(t *testing.T) {
	assert.Nil(t, ReasoningSteps(event("RunStarted", "run-1", nil)))
	assert.Nil(t, ReasoningSteps(event("RunContent", "run-1", map[string]any{"content": "text"})))
}

func TestNormalizeReasoningPayloadHoistsSteps(t *testing.T) {
	e := event("ReasoningStep", "r1", map[string]any{
		"agent_id": "x",
		"content":  map[string]any{"title": "thinking"},
	})
	payload := normalizeReasoningPayload(e)
	assert.Equal(t, "x", payload["agent_id"])
	assert.Equal(t, 1, payloadReasoningLen(payload))

	// Original event payload is untouched.
	_, hoisted := e.Payload["reasoning_steps"]
	assert.False(t, hoisted)
}

func TestPayloadReasoningLen(t *testing.T) {
	assert.Equal(t, 0, payloadReasoningLen(nil))
	assert.Equal(t, 0, payloadReasoningLen(map[string]any{"reasoning_steps": "not an array"}))
	assert.Equal(t, 2, payloadReasoningLen(reasoningPayload(2)))
}
