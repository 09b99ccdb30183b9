// Package consolidate reduces a run's raw event sequence into presentable
// state: an ordered, deduplicated list of progress steps, an incrementally
// reconstructed message snapshot, and a human-readable status label.
//
// The engine is a pure fold over the event log. It holds no internal state,
// performs no I/O, and never fails on malformed input; any event sequence,
// however broken, produces some deterministic output.
package consolidate

import "aria/internal/runevents"

// Step is one consolidated entry in a run's progress view. For correlatable
// categories (tool calls, reasoning, memory updates) there is at most one
// step per base identity; the 1-3 raw events describing that unit of work
// collapse into it. For everything else a step is one raw event, in arrival
// order.
type Step struct {
	ID       string             `json:"id"`
	Category runevents.Category `json:"category"`
	Phase    runevents.Phase    `json:"phase"`
	Payload  map[string]any     `json:"payload,omitempty"`
}

// Completed reports whether the step's unit of work reached a terminal phase.
func (s Step) Completed() bool {
	return s.Phase == runevents.PhaseCompleted
}
