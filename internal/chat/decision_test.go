package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecision_ValidStructuredReply(t *testing.T) {
	dec := ParseDecision(`{"message": "On it!", "action": "SEARCH_JOBS", "data": {"query": "barista", "location": "Dubai"}}`)

	assert.Equal(t, "On it!", dec.Message)
	assert.Equal(t, ActionSearchJobs, dec.Action)
	assert.Equal(t, "barista", dec.Data["query"])
	assert.Equal(t, "Dubai", dec.Data["location"])
}

func TestParseDecision_PlainTextWrappedAsMessage(t *testing.T) {
	raw := "Sorry, I can't format that as JSON right now."
	dec := ParseDecision(raw)

	assert.Equal(t, raw, dec.Message)
	assert.Equal(t, ActionNone, dec.Action)
	assert.NotNil(t, dec.Data)
}

func TestParseDecision_MarkdownFencedJSON(t *testing.T) {
	dec := ParseDecision("```json\n{\"message\": \"hi\", \"action\": \"NONE\", \"data\": {}}\n```")

	assert.Equal(t, "hi", dec.Message)
	assert.Equal(t, ActionNone, dec.Action)
}

func TestParseDecision_UnknownActionDegradesToNone(t *testing.T) {
	dec := ParseDecision(`{"message": "doing a thing", "action": "LAUNCH_ROCKET", "data": {}}`)

	assert.Equal(t, ActionNone, dec.Action)
	assert.Equal(t, "doing a thing", dec.Message)
}

func TestParseDecision_MissingFields(t *testing.T) {
	dec := ParseDecision(`{}`)

	assert.Equal(t, fallbackMessage, dec.Message)
	assert.Equal(t, ActionNone, dec.Action)
	assert.NotNil(t, dec.Data)
}

func TestParseDecision_NonObjectJSON(t *testing.T) {
	// a bare JSON number is valid JSON but not a decision
	dec := ParseDecision(`42`)

	assert.Equal(t, "42", dec.Message)
	assert.Equal(t, ActionNone, dec.Action)
}

func TestParseDecision_EmptyInput(t *testing.T) {
	dec := ParseDecision("")

	assert.Equal(t, fallbackMessage, dec.Message)
	assert.Equal(t, ActionNone, dec.Action)
}

func TestParseAction_ClosedEnum(t *testing.T) {
	tests := []struct {
		raw      string
		expected ActionKind
	}{
		{"AUTO_APPLY", ActionAutoApply},
		{"SHOW_PLAN", ActionShowPlan},
		{"NONE", ActionNone},
		{"", ActionNone},
		{"auto_apply", ActionNone},
		{"DELETE_EVERYTHING", ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseAction(tt.raw); got != tt.expected {
				t.Errorf("ParseAction(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}
