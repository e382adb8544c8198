package main

import (
	"context"

	"github.com/extremevalue/research-kit/pkg/llm"
	"github.com/extremevalue/research-kit/pkg/record"
)

// llmCodeGenerator adapts llm.Provider to codegen.SubAgentGenerator for
// tier-3 free-form generation (spec §4.7): dispatch is a single isolated
// call producing one strict JSON field, "source".
type llmCodeGenerator struct {
	provider llm.Provider
}

type tier3Result struct {
	Source string `json:"source" validate:"required"`
}

func (g llmCodeGenerator) GenerateCode(ctx context.Context, def record.Definition) (string, error) {
	const task = `Write a self-contained backtest implementation of the given
strategy definition. The implementation must consume a date range
supplied by the caller and must never embed a literal calendar date.
Respond with a JSON object carrying exactly one field, "source", holding
the generated code as a string.`

	var result tier3Result
	if err := g.provider.Dispatch(ctx, task, map[string]any{"definition": def}, &result); err != nil {
		return "", err
	}
	return result.Source, nil
}
