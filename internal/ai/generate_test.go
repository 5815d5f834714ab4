package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedCompleter struct {
	text string
	err  error
}

func (f *fixedCompleter) Complete(context.Context, string, string, Options) (string, error) {
	return f.text, f.err
}

func TestScoreResume_ParsesStructuredVerdict(t *testing.T) {
	gen := NewGenerator(&fixedCompleter{
		text: `{"score": 72, "feedback": ["good backend depth"], "missing": ["kubernetes"]}`,
	})

	score, err := gen.ScoreResume(context.Background(), "resume", "job description")

	assert.NoError(t, err)
	assert.Equal(t, 72, score.Score)
	assert.Equal(t, []string{"good backend depth"}, score.Feedback)
	assert.Equal(t, []string{"kubernetes"}, score.Missing)
}

func TestScoreResume_StripsMarkdownFences(t *testing.T) {
	gen := NewGenerator(&fixedCompleter{
		text: "```json\n{\"score\": 40, \"feedback\": [], \"missing\": []}\n```",
	})

	score, err := gen.ScoreResume(context.Background(), "resume", "job")

	assert.NoError(t, err)
	assert.Equal(t, 40, score.Score)
}

func TestScoreResume_UnparseableOutputDegradesToZero(t *testing.T) {
	gen := NewGenerator(&fixedCompleter{text: "Sure! Your resume is pretty decent."})

	score, err := gen.ScoreResume(context.Background(), "resume", "job")

	assert.NoError(t, err)
	assert.Equal(t, 0, score.Score)
	assert.Equal(t, []string{"Could not parse score"}, score.Feedback)
	assert.Empty(t, score.Missing)
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain json untouched", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1} \n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkdownFences(tt.in)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
