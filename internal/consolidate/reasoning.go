package consolidate

import "aria/internal/runevents"

// ReasoningSteps extracts the reasoning payload carried by an event, checking
// in order:
//
//  1. a reasoning_steps array on the outer payload (already accumulated
//     upstream, used as-is),
//  2. a reasoning_steps array nested inside the payload's content object,
//  3. for ReasoningStep events only, a single object content wrapped as a
//     one-element array.
//
// Returns nil when the event carries no reasoning data. Shared by the step
// reducer, the RunCompleted fold-in, and the message accumulator.
func ReasoningSteps(e runevents.RawEvent) []any {
	if e.Payload == nil {
		return nil
	}
	if steps, ok := e.Payload["reasoning_steps"].([]any); ok {
		return steps
	}
	if content, ok := e.Payload["content"].(map[string]any); ok {
		if steps, ok := content["reasoning_steps"].([]any); ok {
			return steps
		}
		category, phase := runevents.Classify(e.Tag)
		if category == runevents.CategoryReasoning && phase == runevents.PhaseStep {
			return []any{content}
		}
	}
	return nil
}

// normalizeReasoningPayload returns a copy of the event payload with the
// extracted reasoning steps hoisted to the outer reasoning_steps field, so
// later merges can compare accumulated content without re-running the
// extraction against a payload shape that no longer exists.
func normalizeReasoningPayload(e runevents.RawEvent) map[string]any {
	steps := ReasoningSteps(e)
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	if steps != nil {
		payload["reasoning_steps"] = steps
	}
	return payload
}

// payloadReasoningLen reports how many reasoning items a stored step payload
// has accumulated. Length, not content, is the richness measure: a payload
// with more items wins over one with fewer. This is a deliberate heuristic;
// it does not detect reasoning that shrinks meaningfully between a Step and
// a Completed event.
func payloadReasoningLen(payload map[string]any) int {
	if payload == nil {
		return 0
	}
	steps, _ := payload["reasoning_steps"].([]any)
	return len(steps)
}
