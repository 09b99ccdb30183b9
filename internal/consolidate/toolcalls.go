package consolidate

import (
	"fmt"

	"aria/internal/runevents"
)

// ToolCallRecord is one aggregated tool call on a message. Records stay
// loosely typed because backends disagree on which fields a tool call
// carries; the merge rules below only ever rely on the identity fields.
type ToolCallRecord map[string]any

// identityKey returns the record's merge identity: the explicit call id when
// present, otherwise tool name plus creation timestamp.
func (r ToolCallRecord) identityKey() string {
	if id, _ := r["tool_call_id"].(string); id != "" {
		return id
	}
	name, _ := r["tool_name"].(string)
	return fmt.Sprintf("%s|%v", name, r["created_at"])
}

// UpsertToolCalls merges incoming tool call records into a message's
// aggregated list. A record with a matching identity is shallow-merged (new
// values win field by field, old fields are retained when absent from the
// new record); unmatched records append in arrival order.
//
// This rule is deliberately more lenient than the step reducer's
// replace-on-Completed policy for tool-call steps. The two serve different
// consumers — the full message tool-call list versus the progress view —
// and must not be unified.
func UpsertToolCalls(existing []ToolCallRecord, incoming []ToolCallRecord) []ToolCallRecord {
	if len(incoming) == 0 {
		return existing
	}
	out := make([]ToolCallRecord, len(existing))
	copy(out, existing)

	for _, record := range incoming {
		if record == nil {
			continue
		}
		key := record.identityKey()
		pos := -1
		for i, have := range out {
			if have.identityKey() == key {
				pos = i
				break
			}
		}
		if pos < 0 {
			out = append(out, record)
			continue
		}
		merged := make(ToolCallRecord, len(out[pos])+len(record))
		for k, v := range out[pos] {
			merged[k] = v
		}
		for k, v := range record {
			merged[k] = v
		}
		out[pos] = merged
	}
	return out
}

// toolRecords collects the tool call records an event carries, either as a
// single tool object or a tools array.
func toolRecords(e runevents.RawEvent) []ToolCallRecord {
	if e.Payload == nil {
		return nil
	}
	var records []ToolCallRecord
	if tool, ok := e.Payload["tool"].(map[string]any); ok {
		records = append(records, ToolCallRecord(tool))
	}
	if tools, ok := e.Payload["tools"].([]any); ok {
		for _, item := range tools {
			if tool, ok := item.(map[string]any); ok {
				records = append(records, ToolCallRecord(tool))
			}
		}
	}
	return records
}
