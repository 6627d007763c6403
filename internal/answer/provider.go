package answer

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
)

// Provider generates an answer from an assembled prompt. Implemented by the
// OpenAI-compatible client and by test fakes.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIProvider calls an OpenAI-compatible chat completion endpoint.
type OpenAIProvider struct {
	llm *openai.LLM
	cfg config.LLMConfig
}

func NewOpenAIProvider(cfg config.LLMConfig) (*OpenAIProvider, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{llm: llm, cfg: cfg}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := p.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(p.cfg.MaxTokens),
		llms.WithTemperature(p.cfg.Temperature),
		llms.WithTopP(p.cfg.TopP),
	)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("generation returned no choices")
	}
	return strings.TrimSpace(res.Choices[0].Content), nil
}
