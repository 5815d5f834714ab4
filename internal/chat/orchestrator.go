package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go-hirekit/internal/ai"
	"go-hirekit/internal/models"
	"go-hirekit/internal/quota"
)

// ErrEmptyMessage rejects a turn before any side effect happens.
var ErrEmptyMessage = errors.New("message required")

// maxHistoryTurns caps how much conversation context is replayed to the model.
const maxHistoryTurns = 20

// TurnRequest is one user utterance plus its conversation context.
type TurnRequest struct {
	Message   string       `json:"message"`
	History   []ai.Message `json:"history"`
	UserID    string       `json:"userId,omitempty"`
	SessionID string       `json:"sessionId,omitempty"`
}

// TurnResponse is the assistant's reply plus the executed action's result.
type TurnResponse struct {
	Message string     `json:"message"`
	Action  ActionKind `json:"action"`
	Result  any        `json:"result"`
}

// TranscriptStore persists the chat history of a session.
type TranscriptStore interface {
	SaveChatMessage(ctx context.Context, msg models.ChatMessage) error
}

// Orchestrator sequences one request/response turn: quota gate, model
// completion with fallback, decision parsing, action dispatch, usage
// accounting, transcript persistence.
type Orchestrator struct {
	llm         ai.Completer
	dispatcher  *Dispatcher
	profiles    ProfileStore
	gate        Gate
	transcripts TranscriptStore
}

func NewOrchestrator(llm ai.Completer, dispatcher *Dispatcher, profiles ProfileStore, gate Gate, transcripts TranscriptStore) *Orchestrator {
	return &Orchestrator{
		llm:         llm,
		dispatcher:  dispatcher,
		profiles:    profiles,
		gate:        gate,
		transcripts: transcripts,
	}
}

func (o *Orchestrator) Turn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	userCtx := UserContext{Plan: quota.PlanFree, ChatsRemaining: 5, AppliesRemaining: 0}
	var profile *models.Profile

	if req.UserID != "" {
		summary, err := o.gate.Summary(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("usage summary: %w", err)
		}

		chatUsage := summary.Today[quota.ResourceChat]
		if chatUsage.Limit != quota.Unlimited && chatUsage.Used >= chatUsage.Limit {
			return &TurnResponse{
				Message: "You've used all your chats today. Upgrade to Pro for 100 chats/day! 🚀",
				Action:  ActionShowPlan,
				Result:  map[string]any{"reason": "chat_limit"},
			}, nil
		}

		profile, err = o.profiles.GetProfile(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}

		userCtx = UserContext{
			Profile:          profile,
			Plan:             summary.Plan,
			ChatsRemaining:   remainingOf(chatUsage),
			AppliesRemaining: remainingOf(summary.Today[quota.ResourceApply]),
		}
	}

	history := req.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	raw, err := o.llm.Complete(ctx, buildSystemPrompt(userCtx), req.Message, ai.Options{
		History:     history,
		Temperature: 0.7,
		MaxTokens:   4096,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	decision := ParseDecision(raw)

	result, err := o.dispatcher.Dispatch(ctx, &decision, req.UserID, profile)
	if err != nil {
		return nil, err
	}

	if req.UserID != "" {
		if cerr := o.gate.Charge(ctx, req.UserID, quota.ResourceChat); cerr != nil {
			log.Printf("⚠️ Failed to charge chat quota for %s: %v", req.UserID, cerr)
		}
		if req.SessionID != "" {
			o.saveTranscript(ctx, req, decision.Message)
		}
	}

	return &TurnResponse{Message: decision.Message, Action: decision.Action, Result: result}, nil
}

func (o *Orchestrator) saveTranscript(ctx context.Context, req TurnRequest, reply string) {
	rows := []models.ChatMessage{
		{UserID: req.UserID, SessionID: req.SessionID, Role: "user", Content: req.Message},
		{UserID: req.UserID, SessionID: req.SessionID, Role: "assistant", Content: reply},
	}
	for _, row := range rows {
		if err := o.transcripts.SaveChatMessage(ctx, row); err != nil {
			log.Printf("⚠️ Failed to save chat message: %v", err)
			return
		}
	}
}

func remainingOf(u quota.ResourceUsage) int {
	if u.Limit == quota.Unlimited {
		return quota.Unlimited
	}
	remaining := u.Limit - u.Used
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
