package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/extremevalue/research-kit/internal/config"
)

// bedrockProvider dispatches sub-agent tasks through Bedrock's
// InvokeModel API, selected by research-kit.yaml: llm.provider: bedrock.
// It demonstrates the Provider interface is backend-agnostic (spec §6):
// same prompt, same decodeAndValidate tail, a different wire format.
type bedrockProvider struct {
	model string
	cfg   config.LLMConfig
}

func newBedrockProvider(cfg config.LLMConfig) *bedrockProvider {
	return &bedrockProvider{model: cfg.Model, cfg: cfg}
}

// anthropicOnBedrockRequest is the Messages-API-shaped request body
// Bedrock's Anthropic-family models expect when invoked directly.
type anthropicOnBedrockRequest struct {
	AnthropicVersion string                     `json:"anthropic_version"`
	MaxTokens        int                        `json:"max_tokens"`
	Messages         []anthropicOnBedrockMessage `json:"messages"`
}

type anthropicOnBedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicOnBedrockResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *bedrockProvider) Dispatch(ctx context.Context, task string, promptContext map[string]any, result any) error {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout(p.cfg))
	defer cancel()

	prompt, err := buildPrompt(task, promptContext)
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("bedrock dispatch: loading AWS config: %w", err)
	}
	client := bedrockruntime.NewFromConfig(awsCfg)

	body, err := json.Marshal(anthropicOnBedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        2048,
		Messages:         []anthropicOnBedrockMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return fmt.Errorf("bedrock dispatch: encoding request: %w", err)
	}

	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("bedrock dispatch: %w", err)
	}

	var parsed anthropicOnBedrockResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return fmt.Errorf("bedrock dispatch: decoding response envelope: %w", err)
	}
	if len(parsed.Content) == 0 {
		return fmt.Errorf("bedrock dispatch: empty response")
	}

	return decodeAndValidate(parsed.Content[0].Text, result)
}
