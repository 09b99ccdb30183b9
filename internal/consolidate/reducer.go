package consolidate

import "aria/internal/runevents"

// stepKey identifies one logical unit of work for correlation.
type stepKey struct {
	category runevents.Category
	id       string
}

// ReduceToSteps folds an ordered raw event sequence into the consolidated
// progress-step list. The fold is pure: the same input always yields the
// same output, and the input slice is never mutated.
//
// streamingError signals that the stream ended abnormally (network drop, a
// surfaced transport error); it triggers a final pruning pass that removes
// dangling non-completed tool call, reasoning, and memory steps so the view
// never shows a permanently pending placeholder. Lifecycle steps always
// survive pruning.
//
// isTeam is accepted for symmetry with the rest of the engine surface; team
// variants of every tag classify identically to their single-agent
// counterparts, so the reduction itself is team-agnostic.
func ReduceToSteps(events []runevents.RawEvent, streamingError bool, isTeam bool) []Step {
	_ = isTeam

	steps := make([]Step, 0, len(events))
	index := make(map[stepKey]int, len(events))

	for _, e := range events {
		category, phase := runevents.Classify(e.Tag)
		switch category {
		case runevents.CategoryContent:
			// Content fragments feed the message snapshot, never the step view.

		case runevents.CategoryToolCall, runevents.CategoryMemoryUpdate:
			id := runevents.BaseIdentity(e.CorrelationID, category)
			k := stepKey{category, id}
			pos, found := index[k]
			if !found {
				index[k] = len(steps)
				steps = append(steps, Step{ID: id, Category: category, Phase: phase, Payload: e.Payload})
				break
			}
			// Completed always wins; a late Started never regresses a
			// pending or completed entry.
			if phase == runevents.PhaseCompleted {
				steps[pos] = Step{ID: id, Category: category, Phase: phase, Payload: e.Payload}
			}

		case runevents.CategoryReasoning:
			steps = mergeReasoning(steps, index, e, phase)

		case runevents.CategoryRunLifecycle:
			if phase == runevents.PhaseCompleted {
				steps = foldRunCompleted(steps, index, e)
				break
			}
			steps = append(steps, Step{ID: e.CorrelationID, Category: category, Phase: phase, Payload: e.Payload})

		default:
			// Malformed or unrecognized events become opaque steps rather
			// than errors; the transport cannot be fully trusted.
			steps = append(steps, Step{ID: e.CorrelationID, Category: category, Phase: phase, Payload: e.Payload})
		}
	}

	if streamingError {
		steps = pruneDangling(steps)
	}
	return steps
}

// mergeReasoning applies the phase-aware reasoning merge policy for one
// event. Richness is measured by accumulated reasoning-step count: a richer
// prior entry is never clobbered by a shorter late arrival, whichever phase
// that arrival claims.
func mergeReasoning(steps []Step, index map[stepKey]int, e runevents.RawEvent, phase runevents.Phase) []Step {
	id := runevents.BaseIdentity(e.CorrelationID, runevents.CategoryReasoning)
	k := stepKey{runevents.CategoryReasoning, id}
	pos, found := index[k]

	switch phase {
	case runevents.PhaseStarted:
		// Placeholder: first write wins.
		if !found {
			index[k] = len(steps)
			steps = append(steps, Step{ID: id, Category: runevents.CategoryReasoning, Phase: phase, Payload: normalizeReasoningPayload(e)})
		}

	case runevents.PhaseStep:
		payload := normalizeReasoningPayload(e)
		if !found {
			index[k] = len(steps)
			return append(steps, Step{ID: id, Category: runevents.CategoryReasoning, Phase: phase, Payload: payload})
		}
		existing := steps[pos]
		// A stale mid-stream Step arriving after a richer Completed is noise.
		if existing.Phase == runevents.PhaseCompleted && payloadReasoningLen(existing.Payload) >= payloadReasoningLen(payload) {
			return steps
		}
		steps[pos] = Step{ID: id, Category: runevents.CategoryReasoning, Phase: phase, Payload: payload}

	case runevents.PhaseCompleted:
		payload := normalizeReasoningPayload(e)
		if !found {
			index[k] = len(steps)
			return append(steps, Step{ID: id, Category: runevents.CategoryReasoning, Phase: phase, Payload: payload})
		}
		existing := steps[pos]
		if existing.Phase == runevents.PhaseStarted || payloadReasoningLen(existing.Payload) <= payloadReasoningLen(payload) {
			steps[pos] = Step{ID: id, Category: runevents.CategoryReasoning, Phase: phase, Payload: payload}
		}
		// Otherwise keep the richer prior entry: an empty or truncated
		// Completed must not clobber a fuller mid-stream Step.
	}
	return steps
}

// foldRunCompleted handles a run-level completion. When the completion
// carries the run's terminal reasoning payload, the agent's standing
// reasoning step is replaced in place by this snapshot instead of keeping
// two entries for the same work.
func foldRunCompleted(steps []Step, index map[stepKey]int, e runevents.RawEvent) []Step {
	completed := Step{
		ID:       e.CorrelationID,
		Category: runevents.CategoryRunLifecycle,
		Phase:    runevents.PhaseCompleted,
		Payload:  e.Payload,
	}

	agentID := e.AgentID()
	if agentID == "" || len(ReasoningSteps(e)) == 0 {
		return append(steps, completed)
	}

	for i := range steps {
		if steps[i].Category != runevents.CategoryReasoning {
			continue
		}
		if payloadAgentID(steps[i].Payload) != agentID {
			continue
		}
		delete(index, stepKey{runevents.CategoryReasoning, steps[i].ID})
		completed.Payload = normalizeReasoningPayload(e)
		steps[i] = completed
		return steps
	}
	return append(steps, completed)
}

// pruneDangling drops every correlatable step that never reached Completed.
func pruneDangling(steps []Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		switch s.Category {
		case runevents.CategoryToolCall, runevents.CategoryReasoning, runevents.CategoryMemoryUpdate:
			if !s.Completed() {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func payloadAgentID(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	if id, _ := payload["agent_id"].(string); id != "" {
		return id
	}
	id, _ := payload["team_id"].(string)
	return id
}
