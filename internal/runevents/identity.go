package runevents

import "strings"

// Phase-tag prefixes embedded in correlation ids, per category. The backend
// prefixes a unit of work's stable id with the tag of the event that carried
// it, so "ToolCallStarted_abc" and "ToolCallCompleted_abc" describe the same
// tool call. Team variants carry their own prefixes.
var identityPrefixes = map[Category][]string{
	CategoryToolCall: {
		"ToolCallStarted_",
		"ToolCallCompleted_",
		"TeamToolCallStarted_",
		"TeamToolCallCompleted_",
	},
	CategoryReasoning: {
		"ReasoningStarted_",
		"ReasoningCompleted_",
		"TeamReasoningStarted_",
		"TeamReasoningCompleted_",
	},
	CategoryMemoryUpdate: {
		"MemoryUpdateStarted_",
		"MemoryUpdateCompleted_",
		"TeamMemoryUpdateStarted_",
		"TeamMemoryUpdateCompleted_",
	},
}

// BaseIdentity strips every known phase-tag prefix for the category from the
// correlation id and returns the remainder. Two events with equal category
// and equal base identity denote the same logical unit of work.
//
// Categories outside ToolCall/Reasoning/MemoryUpdate are never correlated by
// id; for those the correlation id is returned unchanged.
func BaseIdentity(correlationID string, category Category) string {
	prefixes, ok := identityPrefixes[category]
	if !ok {
		return correlationID
	}
	id := correlationID
	for _, prefix := range prefixes {
		id = strings.TrimPrefix(id, prefix)
	}
	return id
}

// Correlatable reports whether events of the category are correlated across
// phases by base identity.
func Correlatable(category Category) bool {
	_, ok := identityPrefixes[category]
	return ok
}
