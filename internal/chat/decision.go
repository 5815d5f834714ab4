package chat

import (
	"github.com/tidwall/gjson"

	"go-hirekit/internal/ai"
)

// ActionKind is the closed set of actions the model may trigger.
type ActionKind string

const (
	ActionSaveProfile      ActionKind = "SAVE_PROFILE"
	ActionSearchJobs       ActionKind = "SEARCH_JOBS"
	ActionBuildResume      ActionKind = "BUILD_RESUME"
	ActionScoreResume      ActionKind = "SCORE_RESUME"
	ActionAutoApply        ActionKind = "AUTO_APPLY"
	ActionCoverLetter      ActionKind = "COVER_LETTER"
	ActionInterviewPrep    ActionKind = "INTERVIEW_PREP"
	ActionShowApplications ActionKind = "SHOW_APPLICATIONS"
	ActionShowPlan         ActionKind = "SHOW_PLAN"
	ActionUpgradePlan      ActionKind = "UPGRADE_PLAN"
	ActionNone             ActionKind = "NONE"
)

// ParseAction maps a raw action string onto the closed enum. Anything
// unrecognized (including empty) degrades to NONE.
func ParseAction(raw string) ActionKind {
	switch ActionKind(raw) {
	case ActionSaveProfile, ActionSearchJobs, ActionBuildResume, ActionScoreResume,
		ActionAutoApply, ActionCoverLetter, ActionInterviewPrep,
		ActionShowApplications, ActionShowPlan, ActionUpgradePlan, ActionNone:
		return ActionKind(raw)
	}
	return ActionNone
}

// Decision is the assistant's parsed reply: what to say and what to do.
type Decision struct {
	Message string
	Action  ActionKind
	Data    map[string]any
}

const fallbackMessage = "I'm not sure how to help with that."

// ParseDecision converts raw model text into a Decision. It never fails:
// text that is not a JSON object is wrapped as the message with action
// NONE, so a malformed reply still produces a usable turn.
func ParseDecision(raw string) Decision {
	cleaned := ai.StripMarkdownFences(raw)

	if !gjson.Valid(cleaned) || !gjson.Parse(cleaned).IsObject() {
		msg := raw
		if msg == "" {
			msg = fallbackMessage
		}
		return Decision{Message: msg, Action: ActionNone, Data: map[string]any{}}
	}

	root := gjson.Parse(cleaned)

	msg := root.Get("message").String()
	if msg == "" {
		msg = fallbackMessage
	}

	data := map[string]any{}
	if d, ok := root.Get("data").Value().(map[string]any); ok {
		data = d
	}

	return Decision{
		Message: msg,
		Action:  ParseAction(root.Get("action").String()),
		Data:    data,
	}
}

// str reads a string payload field, empty when absent or non-string.
func (d Decision) str(key string) string {
	s, _ := d.Data[key].(string)
	return s
}
