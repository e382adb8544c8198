// Package llm implements the provider-agnostic LLM dispatch contract
// spec §6 requires: dispatch(task, context, schema) -> structured_output,
// with three interchangeable backends selected by research-kit.yaml's
// llm.provider field.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/extremevalue/research-kit/internal/config"
)

// Provider dispatches a single isolated sub-agent task. result must be a
// pointer to a struct tagged with "validate" rules; Dispatch unmarshals
// the model's JSON response into it and runs struct validation before
// returning, so a malformed or schema-violating response is a hard
// error rather than a silently wrong struct (spec §6: "Structured
// outputs must validate against the schema or the call is failed").
type Provider interface {
	Dispatch(ctx context.Context, task string, promptContext map[string]any, result any) error
}

var validate = validator.New()

// NewProvider selects a Provider by cfg.Provider. The error string
// mirrors the teacher's NewClient-with-unknown-provider idiom verbatim.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return newAnthropicProvider(cfg), nil
	case "bedrock":
		return newBedrockProvider(cfg), nil
	case "genai":
		return newGenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// decodeAndValidate is the common tail of every adapter's Dispatch:
// pull the JSON object out of the model's raw text response, unmarshal
// it into result, then enforce result's validate tags.
func decodeAndValidate(raw string, result any) error {
	body, err := extractJSON(raw)
	if err != nil {
		return fmt.Errorf("extracting structured output: %w", err)
	}
	if err := json.Unmarshal([]byte(body), result); err != nil {
		return fmt.Errorf("decoding structured output: %w", err)
	}
	if err := validate.Struct(result); err != nil {
		return fmt.Errorf("structured output failed schema validation: %w", err)
	}
	return nil
}

// dispatchTimeout bounds a single provider round trip when cfg.Timeout
// is unset (Default() always sets it, but a hand-edited config might not).
func dispatchTimeout(cfg config.LLMConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 60 * time.Second
	}
	return cfg.Timeout
}
