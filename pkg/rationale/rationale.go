package rationale

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/extremevalue/research-kit/pkg/llm"
	"github.com/extremevalue/research-kit/pkg/record"
)

// matchTemplate renders the fixed catalog-matching instruction via
// langchaingo's prompt templating; the factor list and the definition's
// economic-mechanism fields are template variables filled in at render
// time.
var matchTemplate = prompts.NewPromptTemplate(
	`Match this strategy's stated economic mechanism against the following
closed catalog of documented factors and structural edges:
{{.catalog}}

Strategy mechanism: {{.mechanism}}
Strategy why_exists: {{.why_exists}}
Strategy why_persists: {{.why_persists}}

Respond with a JSON object carrying exactly these fields: "source" (one
of "stated", "enhanced", "inferred", "unknown"), "confidence" (one of
"high", "medium", "low"), "factor_alignment" (array of catalog entries
this strategy's edge most resembles, empty if none), "research_notes"
(a short string explaining the match).`,
	[]string{"catalog", "mechanism", "why_exists", "why_persists"},
)

// inferenceResult is the sub-agent's strict JSON payload, validated
// before being mapped onto record.EdgeProvenance's typed fields.
type inferenceResult struct {
	Source          string   `json:"source" validate:"required,oneof=stated enhanced inferred unknown"`
	Confidence      string   `json:"confidence" validate:"required,oneof=high medium low"`
	FactorAlignment []string `json:"factor_alignment"`
	ResearchNotes   string   `json:"research_notes"`
}

// Infer dispatches a single isolated sub-agent call matching def's
// stated edge against the fixed factor catalog (spec §4.5). Its output
// is informational only: the caller must never let a failure here
// block a strategy's progression. The ingest command runs it before C3
// and turns its confidence into the draft's EconomicRationale sub-score.
func Infer(ctx context.Context, provider llm.Provider, def record.Definition, edge record.Edge) (record.EdgeProvenance, error) {
	task, err := matchTemplate.Format(map[string]any{
		"catalog":      strings.Join(catalog, ", "),
		"mechanism":    edge.Mechanism,
		"why_exists":   edge.WhyExists,
		"why_persists": edge.WhyPersists,
	})
	if err != nil {
		return record.EdgeProvenance{}, fmt.Errorf("rendering rationale prompt: %w", err)
	}

	promptContext := map[string]any{"definition": def, "edge": edge}

	var result inferenceResult
	if err := provider.Dispatch(ctx, task, promptContext, &result); err != nil {
		return record.EdgeProvenance{}, fmt.Errorf("rationale inference dispatch: %w", err)
	}

	return record.EdgeProvenance{
		Source:          record.RationaleSource(result.Source),
		Confidence:      record.Confidence(result.Confidence),
		FactorAlignment: result.FactorAlignment,
		ResearchNotes:   result.ResearchNotes,
	}, nil
}

// InferOrUnknown calls Infer and, on any failure, returns the
// spec §4.5-mandated fallback (source=unknown) instead of propagating
// the error — rationale inference "never gates progression".
func InferOrUnknown(ctx context.Context, provider llm.Provider, def record.Definition, edge record.Edge) record.EdgeProvenance {
	result, err := Infer(ctx, provider, def, edge)
	if err != nil {
		return record.EdgeProvenance{Source: record.SourceUnknown, Confidence: record.ConfidenceLow}
	}
	return result
}
