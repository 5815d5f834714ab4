package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// ProvidersExhaustedError is returned when every configured backend in
// the chain failed. Reasons are ordered by attempt.
type ProvidersExhaustedError struct {
	Reasons []string
}

func (e *ProvidersExhaustedError) Error() string {
	if len(e.Reasons) == 0 {
		return "no llm providers configured"
	}
	return fmt.Sprintf("all llm providers failed:\n%s", strings.Join(e.Reasons, "\n"))
}

// FallbackClient tries backends in a fixed priority order. First success
// wins. Calls are strictly sequential so failure-reason ordering stays
// deterministic and no duplicate external usage occurs.
type FallbackClient struct {
	providers []Provider
}

func NewFallbackClient(providers ...Provider) *FallbackClient {
	return &FallbackClient{providers: providers}
}

func (c *FallbackClient) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	var reasons []string

	for _, p := range c.providers {
		if !p.Configured() {
			continue
		}

		log.Printf("[LLM] Trying %s...", p.Name())
		text, err := p.Complete(ctx, system, user, opts)
		if err != nil {
			log.Printf("[LLM] %s failed: %v", p.Name(), err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		return text, nil
	}

	return "", &ProvidersExhaustedError{Reasons: reasons}
}
