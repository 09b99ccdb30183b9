package consolidate

import (
	"fmt"
	"strings"

	"aria/internal/runevents"
)

const labelWorking = "Working..."

// SynthesizeLabel derives one short human-readable status string from a
// run's event sequence. The latest event decides the label; the full
// sequence is needed for exactly one case, the team completion gate: in a
// team context a member's own completion reads as still working until the
// team-level completion marker has been observed somewhere in the stream,
// so the view never declares victory while teammates are running.
//
// In team context the label is prefixed with the latest event's member name
// when one is known.
func SynthesizeLabel(events []runevents.RawEvent, isTeam bool) string {
	if len(events) == 0 {
		return labelWorking
	}
	latest := events[len(events)-1]
	label := baseLabel(latest, events, isTeam)
	if isTeam {
		if name := latest.MemberName(); name != "" {
			label = name + ": " + label
		}
	}
	return label
}

func baseLabel(latest runevents.RawEvent, events []runevents.RawEvent, isTeam bool) string {
	category, phase := runevents.Classify(latest.Tag)
	switch category {
	case runevents.CategoryRunLifecycle:
		switch phase {
		case runevents.PhaseCompleted:
			if isTeam && !teamMarkerSeen(events) {
				return labelWorking
			}
			if seconds, ok := latest.Duration(); ok {
				return "Worked for " + formatDuration(seconds)
			}
			return "Completed"
		case runevents.PhaseError:
			if reason := failureReason(latest); reason != "" {
				return reason
			}
			return "Run error"
		case runevents.PhaseCancelled:
			if reason := failureReason(latest); reason != "" {
				return reason
			}
			return "Run cancelled"
		default:
			return labelWorking
		}

	case runevents.CategoryToolCall:
		name := latest.ToolName()
		if phase == runevents.PhaseCompleted {
			if name == "" {
				return "Tool call completed"
			}
			return "Tool call completed: " + name
		}
		if name == "" {
			return "Calling tool..."
		}
		return "Calling tool: " + name

	case runevents.CategoryReasoning:
		if phase == runevents.PhaseCompleted {
			return "Reasoning completed!"
		}
		return "Reasoning..."

	case runevents.CategoryMemoryUpdate:
		if phase == runevents.PhaseCompleted {
			return "Memory updated!"
		}
		return "Updating memory..."

	default:
		return labelWorking
	}
}

func teamMarkerSeen(events []runevents.RawEvent) bool {
	for _, e := range events {
		if runevents.IsTeamRunCompleted(e.Tag) {
			return true
		}
	}
	return false
}

func failureReason(e runevents.RawEvent) string {
	if reason := e.Reason(); reason != "" {
		return reason
	}
	// Some backends surface the failure text as plain content.
	if content, ok := e.StringContent(); ok {
		return content
	}
	return ""
}

func formatDuration(seconds float64) string {
	s := fmt.Sprintf("%.1f", seconds)
	s = strings.TrimSuffix(s, ".0")
	return s + " seconds"
}
