package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hirekit/internal/ai"
	"go-hirekit/internal/models"
	"go-hirekit/internal/quota"
)

type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	system string
	opts   ai.Options
}

func (f *fakeCompleter) Complete(_ context.Context, system, message string, opts ai.Options) (string, error) {
	f.calls++
	f.system = system
	f.opts = opts
	return f.reply, f.err
}

type fakeTranscripts struct {
	rows []models.ChatMessage
}

func (f *fakeTranscripts) SaveChatMessage(_ context.Context, msg models.ChatMessage) error {
	f.rows = append(f.rows, msg)
	return nil
}

func freeSummary(chatsUsed int) quota.Summary {
	return quota.Summary{
		Plan: quota.PlanFree,
		Today: map[quota.Resource]quota.ResourceUsage{
			quota.ResourceChat:   {Used: chatsUsed, Limit: 5},
			quota.ResourceApply:  {Used: 0, Limit: 0},
			quota.ResourceResume: {Used: 0, Limit: 1},
			quota.ResourceUpload: {Used: 0, Limit: 2},
		},
	}
}

func newOrchestratorFixture(reply string, summary quota.Summary) (*Orchestrator, *dispatcherFixture, *fakeCompleter, *fakeTranscripts) {
	f := newFixture()
	f.gate.summary = summary
	llm := &fakeCompleter{reply: reply}
	transcripts := &fakeTranscripts{}
	o := NewOrchestrator(llm, f.d, f.profiles, f.gate, transcripts)
	return o, f, llm, transcripts
}

func TestTurn_EmptyMessageRejected(t *testing.T) {
	o, _, llm, _ := newOrchestratorFixture(`{"message":"hi","action":"NONE","data":{}}`, freeSummary(0))

	_, err := o.Turn(context.Background(), TurnRequest{Message: "   "})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, llm.calls)
}

func TestTurn_ChatLimitShortCircuitsBeforeTheModel(t *testing.T) {
	o, f, llm, _ := newOrchestratorFixture("", freeSummary(5))

	resp, err := o.Turn(context.Background(), TurnRequest{Message: "hello", UserID: "free@x.dev"})

	require.NoError(t, err)
	assert.Equal(t, ActionShowPlan, resp.Action)
	assert.Equal(t, map[string]any{"reason": "chat_limit"}, resp.Result)
	assert.Contains(t, resp.Message, "Upgrade to Pro")
	assert.Equal(t, 0, llm.calls, "no provider call may happen once the gate closes")
	assert.Empty(t, f.gate.charges)
}

func TestTurn_HappyPathChargesChatAndSavesTranscript(t *testing.T) {
	o, f, llm, transcripts := newOrchestratorFixture(
		`{"message":"Profile saved!","action":"SAVE_PROFILE","data":{"name":"Jane"}}`,
		freeSummary(2),
	)

	resp, err := o.Turn(context.Background(), TurnRequest{
		Message:   "My name is Jane",
		UserID:    "free@x.dev",
		SessionID: "sess-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Profile saved!", resp.Message)
	assert.Equal(t, ActionSaveProfile, resp.Action)
	assert.Equal(t, map[string]any{"saved": true}, resp.Result)

	assert.Equal(t, []quota.Resource{quota.ResourceChat}, f.gate.charges)
	require.Len(t, f.profiles.upserts, 1)
	assert.Equal(t, "Jane", f.profiles.upserts[0].Name)

	require.Len(t, transcripts.rows, 2)
	assert.Equal(t, "user", transcripts.rows[0].Role)
	assert.Equal(t, "My name is Jane", transcripts.rows[0].Content)
	assert.Equal(t, "assistant", transcripts.rows[1].Role)
	assert.Equal(t, "Profile saved!", transcripts.rows[1].Content)

	assert.True(t, llm.opts.JSONMode)
	assert.Contains(t, llm.system, "Current user plan: free")
}

func TestTurn_AnonymousUserSkipsGateAndTranscript(t *testing.T) {
	o, f, llm, transcripts := newOrchestratorFixture(
		`{"message":"Hey! I'm HireKit.","action":"NONE","data":{}}`,
		freeSummary(0),
	)

	resp, err := o.Turn(context.Background(), TurnRequest{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, ActionNone, resp.Action)
	assert.Equal(t, 1, llm.calls)
	assert.Empty(t, f.gate.charges, "anonymous turns are never charged")
	assert.Empty(t, transcripts.rows)
}

func TestTurn_UnparseableModelOutputStillAnswers(t *testing.T) {
	o, f, _, _ := newOrchestratorFixture("Sure, here's some plain text.", freeSummary(1))

	resp, err := o.Turn(context.Background(), TurnRequest{Message: "hello", UserID: "free@x.dev"})

	require.NoError(t, err)
	assert.Equal(t, ActionNone, resp.Action)
	assert.Equal(t, "Sure, here's some plain text.", resp.Message)
	assert.Equal(t, []quota.Resource{quota.ResourceChat}, f.gate.charges, "a degraded parse is still a served turn")
}

func TestTurn_HistoryIsTruncatedToTheLastTwenty(t *testing.T) {
	o, _, llm, _ := newOrchestratorFixture(`{"message":"ok","action":"NONE","data":{}}`, freeSummary(0))

	history := make([]ai.Message, 30)
	for i := range history {
		history[i] = ai.Message{Role: "user", Content: "m"}
	}

	_, err := o.Turn(context.Background(), TurnRequest{Message: "hi", History: history})

	require.NoError(t, err)
	assert.Len(t, llm.opts.History, maxHistoryTurns)
}
