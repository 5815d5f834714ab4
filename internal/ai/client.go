package ai

import (
	"context"
	"time"
)

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Options tunes a single completion call. JSONMode is a hint: providers
// that cannot enforce structured output ignore it, so callers must parse
// defensively either way.
type Options struct {
	History     []Message
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// requestTimeout bounds one outbound provider call.
const requestTimeout = 60 * time.Second

// Provider is a single LLM completion backend.
type Provider interface {
	Name() string

	// Configured reports whether the backend has a credential. An
	// unconfigured backend is skipped by the fallback chain and never
	// counted as a failure.
	Configured() bool

	// Complete sends one prompt and returns the raw model text.
	Complete(ctx context.Context, system, user string, opts Options) (string, error)
}

// Completer is the capability consumed by callers of the fallback chain.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts Options) (string, error)
}

func (o Options) maxTokens() int {
	if o.MaxTokens <= 0 {
		return 4096
	}
	return o.MaxTokens
}
