package runevents

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		tag      string
		category Category
		phase    Phase
	}{
		{"RunStarted", CategoryRunLifecycle, PhaseStarted},
		{"TeamRunStarted", CategoryRunLifecycle, PhaseStarted},
		{"RunCompleted", CategoryRunLifecycle, PhaseCompleted},
		{"TeamRunCompleted", CategoryRunLifecycle, PhaseCompleted},
		{"RunError", CategoryRunLifecycle, PhaseError},
		{"RunCancelled", CategoryRunLifecycle, PhaseCancelled},
		{"RunContent", CategoryContent, PhaseNone},
		{"TeamRunContent", CategoryContent, PhaseNone},
		{"ToolCallStarted", CategoryToolCall, PhaseStarted},
		{"ToolCallCompleted", CategoryToolCall, PhaseCompleted},
		{"TeamToolCallStarted", CategoryToolCall, PhaseStarted},
		{"TeamToolCallCompleted", CategoryToolCall, PhaseCompleted},
		{"ReasoningStarted", CategoryReasoning, PhaseStarted},
		{"ReasoningStep", CategoryReasoning, PhaseStep},
		{"ReasoningCompleted", CategoryReasoning, PhaseCompleted},
		{"TeamReasoningStep", CategoryReasoning, PhaseStep},
		{"MemoryUpdateStarted", CategoryMemoryUpdate, PhaseStarted},
		{"MemoryUpdateCompleted", CategoryMemoryUpdate, PhaseCompleted},
		{"UpdatingMemory", CategoryMemoryUpdate, PhaseCompleted},
		{"MemoryUpdate", CategoryMemoryUpdate, PhaseStarted},
		{"SomethingElse", CategoryUnknown, PhaseNone},
		{"", CategoryUnknown, PhaseNone},
	}

	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			category, phase := Classify(tc.tag)
			if category != tc.category {
				t.Fatalf("expected category %v, got %v", tc.category, category)
			}
			if phase != tc.phase {
				t.Fatalf("expected phase %v, got %v", tc.phase, phase)
			}
		})
	}
}

func TestClassifyLegacyAliasPrecedence(t *testing.T) {
	// "UpdatingMemory" must win over the generic "MemoryUpdate" fallback even
	// when both substrings are present.
	category, phase := Classify("AgentUpdatingMemory")
	if category != CategoryMemoryUpdate || phase != PhaseCompleted {
		t.Fatalf("expected memory update completed, got %v/%v", category, phase)
	}
}

func TestIsTeamRunCompleted(t *testing.T) {
	if !IsTeamRunCompleted("TeamRunCompleted") {
		t.Fatal("expected team marker to match")
	}
	if IsTeamRunCompleted("RunCompleted") {
		t.Fatal("member completion must not count as the team marker")
	}
}
