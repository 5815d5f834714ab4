package ai

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicModel   = "claude-sonnet-4-20250514"
	anthropicVersion = "2023-06-01"
)

// anthropicProvider calls the Messages API directly. The API has no
// structured-output switch, so the JSONMode hint is ignored here.
type anthropicProvider struct {
	apiKey string
	http   *resty.Client
}

func NewAnthropicProvider(apiKey string) Provider {
	return &anthropicProvider{
		apiKey: apiKey,
		http:   resty.New().SetTimeout(requestTimeout),
	}
}

func (p *anthropicProvider) Name() string { return "Anthropic" }

func (p *anthropicProvider) Configured() bool { return p.apiKey != "" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *anthropicProvider) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	messages := make([]anthropicMessage, 0, len(opts.History)+1)
	for _, m := range opts.History {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, anthropicMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: user})

	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", p.apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetBody(map[string]any{
			"model":       anthropicModel,
			"max_tokens":  opts.maxTokens(),
			"temperature": opts.Temperature,
			"system":      system,
			"messages":    messages,
		}).
		Post(anthropicURL)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	body := resp.String()
	if resp.IsError() {
		return "", fmt.Errorf("anthropic %d: %s", resp.StatusCode(), truncateErr(body))
	}

	text := gjson.Get(body, "content.0.text").String()
	if text == "" {
		return "", fmt.Errorf("anthropic returned empty content")
	}
	return text, nil
}

// truncateErr keeps provider error bodies short enough for the
// aggregate failure report.
func truncateErr(body string) string {
	if len(body) > 200 {
		return body[:200]
	}
	return body
}
