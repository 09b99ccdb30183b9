// Package runevents defines the wire-level run event model shared by the
// consolidation engine and the transport layer.
//
// A run event is one message describing the progress of an agent or team
// execution: lifecycle markers, tool calls, reasoning cycles, memory updates,
// content fragments, errors, cancellation. Events arrive in order for a given
// run but the transport cannot be fully trusted, so every accessor here is
// tolerant of missing or oddly-shaped payload fields.
package runevents

// RawEvent is one inbound run event exactly as received. Immutable once
// constructed; the consolidation engine never mutates payloads in place.
type RawEvent struct {
	Tag           string         `json:"event"`
	CorrelationID string         `json:"correlation_id"`
	Payload       map[string]any `json:"payload"`
}

// Category reports the event's canonical category. Computed on demand; the
// classifier is cheap enough to call redundantly.
func (e RawEvent) Category() Category {
	c, _ := Classify(e.Tag)
	return c
}

// Phase reports the event's canonical phase.
func (e RawEvent) Phase() Phase {
	_, p := Classify(e.Tag)
	return p
}

// stringField returns a top-level payload field as a string, or "".
func (e RawEvent) stringField(key string) string {
	if e.Payload == nil {
		return ""
	}
	s, _ := e.Payload[key].(string)
	return s
}

// StringContent returns the payload content when it is a text fragment.
func (e RawEvent) StringContent() (string, bool) {
	if e.Payload == nil {
		return "", false
	}
	s, ok := e.Payload["content"].(string)
	return s, ok
}

// ObjectContent returns the payload content when it is a structured object.
func (e RawEvent) ObjectContent() (map[string]any, bool) {
	if e.Payload == nil {
		return nil, false
	}
	obj, ok := e.Payload["content"].(map[string]any)
	return obj, ok
}

// AgentID returns the originating agent identifier, falling back to the team
// identifier for team-level events.
func (e RawEvent) AgentID() string {
	if id := e.stringField("agent_id"); id != "" {
		return id
	}
	return e.stringField("team_id")
}

// MemberName returns a display name for the originating agent or team.
func (e RawEvent) MemberName() string {
	if name := e.stringField("agent_name"); name != "" {
		return name
	}
	return e.stringField("team_name")
}

// Reason returns the failure/cancellation reason carried by the event.
func (e RawEvent) Reason() string {
	return e.stringField("reason")
}

// Transcript returns the audio transcript fragment carried by the event.
func (e RawEvent) Transcript() string {
	if e.Payload == nil {
		return ""
	}
	ra, ok := e.Payload["response_audio"].(map[string]any)
	if !ok {
		return ""
	}
	t, _ := ra["transcript"].(string)
	return t
}

// Duration returns the duration metric carried by the event, in seconds.
func (e RawEvent) Duration() (float64, bool) {
	if e.Payload == nil {
		return 0, false
	}
	metrics, ok := e.Payload["metrics"].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := metrics["duration"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ToolName returns the tool name for tool-call events. The payload carries
// either a nested tool object or a flat tool_name field depending on the
// backend version.
func (e RawEvent) ToolName() string {
	if e.Payload == nil {
		return ""
	}
	if tool, ok := e.Payload["tool"].(map[string]any); ok {
		if name, _ := tool["tool_name"].(string); name != "" {
			return name
		}
	}
	return e.stringField("tool_name")
}
