package i18n

import (
	"fmt"
	"strings"
	"testing"
)

// TestMessagesNotEmpty ensures that all message constants are non-empty.
// This helps catch typos or incomplete message definitions.
func TestMessagesNotEmpty(t *testing.T) {
	messages := map[string]string{
		"MsgCancelled":       MsgCancelled,
		"MsgCompanyPrompt":   MsgCompanyPrompt,
		"MsgNoTranscript":    MsgNoTranscript,
		"CmdRootShort":       CmdRootShort,
		"CmdRootLong":        CmdRootLong,
		"CmdVersionShort":    CmdVersionShort,
		"CmdConfigShort":     CmdConfigShort,
		"CmdHistoryShort":    CmdHistoryShort,
		"CmdCompletionShort": CmdCompletionShort,
		"FlagCompany":        FlagCompany,
		"FlagTranscript":     FlagTranscript,
	}

	for name, value := range messages {
		if value == "" {
			t.Errorf("Message constant %s is empty", name)
		}
	}
}

// TestErrorMessagesNotEmpty ensures that error message constants are non-empty.
func TestErrorMessagesNotEmpty(t *testing.T) {
	messages := map[string]string{
		"ErrOpInput":          ErrOpInput,
		"ErrOpKickoff":        ErrOpKickoff,
		"ErrOpCrew":           ErrOpCrew,
		"ErrOpConfig":         ErrOpConfig,
		"ErrOpHistory":        ErrOpHistory,
		"ErrMsgReadInput":     ErrMsgReadInput,
		"ErrMsgKickoffFailed": ErrMsgKickoffFailed,
		"ErrMsgCrewConfig":    ErrMsgCrewConfig,
		"ErrMsgAPIKeyMissing": ErrMsgAPIKeyMissing,
		"ErrMsgSaveRun":       ErrMsgSaveRun,
		"ErrMsgRunNotFound":   ErrMsgRunNotFound,
	}

	for name, value := range messages {
		if value == "" {
			t.Errorf("Error message constant %s is empty", name)
		}
	}
}

// TestFormatStrings verifies that format strings have the expected number of verbs.
func TestFormatStrings(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
	}{
		{"MsgKickoff", MsgKickoff, []any{"Acme"}},
		{"MsgTaskStarted", MsgTaskStarted, []any{1, 2, "research_task", "researcher"}},
		{"MsgKickoffDone", MsgKickoffDone, []any{"1s", 2, 300}},
		{"CrewAgentInstructions", CrewAgentInstructions, []any{"role", "backstory", "goal"}},
		{"CrewTaskExpected", CrewTaskExpected, []any{"a report"}},
		{"CrewTaskContext", CrewTaskContext, []any{"findings"}},
		{"ErrMsgSaveRun", ErrMsgSaveRun, []any{"run-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fmt.Sprintf(tt.format, tt.args...)
			if strings.Contains(got, "%!") {
				t.Errorf("format %s produced %q", tt.name, got)
			}
		})
	}
}
