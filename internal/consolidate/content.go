package consolidate

import (
	"encoding/json"

	"aria/internal/runevents"
)

// MessageSnapshot is the per-run reconstruction of the assistant message:
// text, media, tool calls, and reasoning, folded together event by event.
// This is a different reduction from the step list — message state rather
// than progress state — sharing the same input stream.
type MessageSnapshot struct {
	Text           string           `json:"text"`
	Transcript     string           `json:"transcript,omitempty"`
	Images         []any            `json:"images,omitempty"`
	Videos         []any            `json:"videos,omitempty"`
	Audio          []any            `json:"audio,omitempty"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
	ReasoningSteps []any            `json:"reasoning_steps,omitempty"`
	CreatedAt      float64          `json:"created_at,omitempty"`

	// reasoningFinal marks that an authoritative reasoning completion has
	// been folded in, guarding against late partial arrivals.
	reasoningFinal bool
}

// ApplyEventToMessage folds one event's payload onto a message snapshot and
// returns the updated snapshot. Value semantics keep the fold pure; callers
// thread the returned snapshot into the next application.
//
// Merge rules per field:
//   - string content appends, so text length is monotone for text-only runs;
//   - object content replaces the rendered block wholesale (each object
//     payload is a complete replacement unit, never concatenated), except
//     for reasoning events whose object payload stays structured;
//   - audio transcript fragments append into their own buffer;
//   - media and timestamps are last-write-wins, and only when the event
//     actually carries a value;
//   - tool calls upsert through UpsertToolCalls;
//   - reasoning payloads merge under the richer-wins policy.
func ApplyEventToMessage(msg MessageSnapshot, e runevents.RawEvent, isTeam bool) MessageSnapshot {
	_ = isTeam
	category, phase := runevents.Classify(e.Tag)

	if text, ok := e.StringContent(); ok {
		msg.Text += text
	} else if obj, ok := e.ObjectContent(); ok && category != runevents.CategoryReasoning {
		msg.Text = renderObjectBlock(obj)
	}

	if fragment := e.Transcript(); fragment != "" {
		msg.Transcript += fragment
	}

	if e.Payload != nil {
		if images, ok := e.Payload["images"].([]any); ok && images != nil {
			msg.Images = images
		}
		if videos, ok := e.Payload["videos"].([]any); ok && videos != nil {
			msg.Videos = videos
		}
		if audio, ok := e.Payload["audio"].([]any); ok && audio != nil {
			msg.Audio = audio
		}
		if createdAt, ok := e.Payload["created_at"].(float64); ok && createdAt != 0 {
			msg.CreatedAt = createdAt
		}
	}

	msg.ToolCalls = UpsertToolCalls(msg.ToolCalls, toolRecords(e))

	if steps := ReasoningSteps(e); steps != nil {
		msg = mergeMessageReasoning(msg, steps, phase == runevents.PhaseCompleted || category == runevents.CategoryRunLifecycle)
	}

	return msg
}

// mergeMessageReasoning applies the richer-wins rule at message level.
// authoritative marks completions (reasoning Completed or a run-level
// completion carrying terminal reasoning).
func mergeMessageReasoning(msg MessageSnapshot, steps []any, authoritative bool) MessageSnapshot {
	switch {
	case authoritative:
		// Same length heuristic as the step reducer: a shorter completion
		// never clobbers richer accumulated reasoning.
		if len(steps) >= len(msg.ReasoningSteps) {
			msg.ReasoningSteps = steps
			msg.reasoningFinal = true
		}
	case msg.reasoningFinal && len(steps) <= len(msg.ReasoningSteps):
		// Stale partial after an authoritative completion.
	case len(steps) >= len(msg.ReasoningSteps):
		msg.ReasoningSteps = steps
	}
	return msg
}

// renderObjectBlock formats a structured content payload for display. The
// rendered block replaces whatever content came before it.
func renderObjectBlock(obj map[string]any) string {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
