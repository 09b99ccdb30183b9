package runevents

import "strings"

// Category is the closed set of event families the engine understands.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryRunLifecycle
	CategoryContent
	CategoryToolCall
	CategoryReasoning
	CategoryMemoryUpdate
)

func (c Category) String() string {
	switch c {
	case CategoryRunLifecycle:
		return "run_lifecycle"
	case CategoryContent:
		return "content"
	case CategoryToolCall:
		return "tool_call"
	case CategoryReasoning:
		return "reasoning"
	case CategoryMemoryUpdate:
		return "memory_update"
	default:
		return "unknown"
	}
}

// Phase qualifies a category with the position of the event inside its
// logical unit of work.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseStarted
	PhaseStep
	PhaseCompleted
	PhaseError
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseStep:
		return "step"
	case PhaseCompleted:
		return "completed"
	case PhaseError:
		return "error"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Classify maps a raw event tag to its canonical (Category, Phase) pair.
//
// Matching is by substring, not equality, so team variants such as
// "TeamRunStarted" or "TeamToolCallCompleted" classify the same as their
// single-agent counterparts. The checks run in precedence order because some
// legacy tags are ambiguous substrings of others; in particular the bare
// "UpdatingMemory" alias predates the MemoryUpdateStarted/Completed pair and
// always meant the update had finished.
func Classify(tag string) (Category, Phase) {
	switch {
	case strings.Contains(tag, "RunStarted"):
		return CategoryRunLifecycle, PhaseStarted
	case strings.Contains(tag, "RunCompleted"):
		return CategoryRunLifecycle, PhaseCompleted
	case strings.Contains(tag, "RunError"):
		return CategoryRunLifecycle, PhaseError
	case strings.Contains(tag, "RunCancelled"):
		return CategoryRunLifecycle, PhaseCancelled
	case strings.Contains(tag, "RunContent"):
		return CategoryContent, PhaseNone
	case strings.Contains(tag, "ToolCall"):
		if strings.Contains(tag, "Completed") {
			return CategoryToolCall, PhaseCompleted
		}
		return CategoryToolCall, PhaseStarted
	case strings.Contains(tag, "ReasoningStarted"):
		return CategoryReasoning, PhaseStarted
	case strings.Contains(tag, "ReasoningStep"):
		return CategoryReasoning, PhaseStep
	case strings.Contains(tag, "ReasoningCompleted"):
		return CategoryReasoning, PhaseCompleted
	case strings.Contains(tag, "MemoryUpdateStarted"):
		return CategoryMemoryUpdate, PhaseStarted
	case strings.Contains(tag, "MemoryUpdateCompleted"):
		return CategoryMemoryUpdate, PhaseCompleted
	case strings.Contains(tag, "UpdatingMemory"):
		// Legacy alias: emitted once, after the update took effect.
		return CategoryMemoryUpdate, PhaseCompleted
	case strings.Contains(tag, "MemoryUpdate"):
		return CategoryMemoryUpdate, PhaseStarted
	default:
		return CategoryUnknown, PhaseNone
	}
}

// IsTeamRunCompleted reports whether the tag is the team-level completion
// marker. Individual member completions also classify as
// RunLifecycle/Completed; only this marker signals the whole team is done.
func IsTeamRunCompleted(tag string) bool {
	return strings.Contains(tag, "TeamRunCompleted")
}
