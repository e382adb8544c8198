package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/extremevalue/research-kit/internal/config"
)

// genAIProvider dispatches sub-agent tasks through Google's Gemini API,
// selected by research-kit.yaml: llm.provider: genai — the third
// interchangeable backend spec §6 requires to prove the dispatch
// contract is provider-agnostic.
type genAIProvider struct {
	model string
	cfg   config.LLMConfig
}

func newGenAIProvider(cfg config.LLMConfig) *genAIProvider {
	return &genAIProvider{model: cfg.Model, cfg: cfg}
}

func (p *genAIProvider) Dispatch(ctx context.Context, task string, promptContext map[string]any, result any) error {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout(p.cfg))
	defer cancel()

	prompt, err := buildPrompt(task, promptContext)
	if err != nil {
		return err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(""))
	if err != nil {
		return fmt.Errorf("genai dispatch: creating client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("genai dispatch: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("genai dispatch: empty response")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return fmt.Errorf("genai dispatch: unexpected response part type")
	}

	return decodeAndValidate(string(text), result)
}
