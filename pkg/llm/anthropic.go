package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/extremevalue/research-kit/internal/config"
)

// anthropicProvider dispatches sub-agent tasks through the Anthropic
// Messages API; the default provider (research-kit.yaml: llm.provider:
// anthropic), matching anthropic-sdk-go's sole role in the teacher's
// pack (spec.md §6's reference implementation).
type anthropicProvider struct {
	client anthropic.Client
	model  string
	cfg    config.LLMConfig
}

func newAnthropicProvider(cfg config.LLMConfig) *anthropicProvider {
	return &anthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey("")), // picks up ANTHROPIC_API_KEY from env
		model:  cfg.Model,
		cfg:    cfg,
	}
}

func (p *anthropicProvider) Dispatch(ctx context.Context, task string, promptContext map[string]any, result any) error {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout(p.cfg))
	defer cancel()

	prompt, err := buildPrompt(task, promptContext)
	if err != nil {
		return err
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return fmt.Errorf("anthropic dispatch: %w", err)
	}
	if len(msg.Content) == 0 {
		return fmt.Errorf("anthropic dispatch: empty response")
	}

	return decodeAndValidate(msg.Content[0].Text, result)
}
