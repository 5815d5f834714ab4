package ai

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// geminiProvider talks to the Gemini API through the official SDK.
type geminiProvider struct {
	apiKey string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiProvider returns the first-priority backend. An empty key
// leaves the provider unconfigured.
func NewGeminiProvider(apiKey string) Provider {
	return &geminiProvider{apiKey: apiKey}
}

func (p *geminiProvider) Name() string { return "Gemini" }

func (p *geminiProvider) Configured() bool { return p.apiKey != "" }

func (p *geminiProvider) init(ctx context.Context) error {
	p.once.Do(func() {
		p.client, p.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return p.initErr
}

func (p *geminiProvider) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	if err := p.init(ctx); err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(opts.History)+1)
	for _, m := range opts.History {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(user, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.maxTokens()),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return text, nil
}
