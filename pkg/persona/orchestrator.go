package persona

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/llm"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/resilience"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Orchestrator dispatches the configured persona roster in parallel
// against a single validation and synthesizes their outputs (spec
// §4.11). It is the sole caller of llm.Provider in the learn/synthesize
// path; rationale inference (C4) has its own, separate call site.
type Orchestrator struct {
	Provider llm.Provider
	Roster   []string
	Quorum   int
	Timeout  time.Duration
	Limiter  resilience.Limiter // optional; nil disables rate limiting
}

// NewOrchestrator builds an Orchestrator from the configured persona
// roster. limiter may be nil.
func NewOrchestrator(provider llm.Provider, cfg config.Personas, limiter resilience.Limiter) *Orchestrator {
	return &Orchestrator{
		Provider: provider,
		Roster:   cfg.Roster,
		Quorum:   cfg.Quorum,
		Timeout:  cfg.Timeout,
		Limiter:  limiter,
	}
}

// Analyze dispatches every persona in Roster in parallel against
// validation/def, tolerates individual sub-agent timeout/failure as
// StatusMissing without failing the batch, and — provided at least
// Quorum personas answered — synthesizes a final Synthesis. Persona
// outputs are sorted by name before being handed to the synthesizer so
// its answer cannot depend on goroutine completion order (spec §4.11:
// "the synthesizer must be commutative in its input order").
func (o *Orchestrator) Analyze(ctx context.Context, validation record.Validation, def record.Definition) (Synthesis, []Result, error) {
	results := o.dispatchRoster(ctx, validation, def)

	okCount := 0
	for _, r := range results {
		if r.Status == StatusOK {
			okCount++
		}
	}
	if okCount < o.Quorum {
		return Synthesis{}, results, apperrors.Newf(apperrors.ErrorTypeTimeout,
			"persona quorum not met: %d of %d required personas responded", okCount, o.Quorum).
			WithDetailsf("roster size %d", len(o.Roster))
	}

	synthesis, err := o.synthesize(ctx, results)
	if err != nil {
		return Synthesis{}, results, err
	}
	return synthesis, results, nil
}

func (o *Orchestrator) dispatchRoster(ctx context.Context, validation record.Validation, def record.Definition) []Result {
	results := make([]Result, len(o.Roster))

	var wg sync.WaitGroup
	for i, p := range o.Roster {
		wg.Add(1)
		go func(i int, persona string) {
			defer wg.Done()
			results[i] = o.dispatchOne(ctx, persona, validation, def)
		}(i, p)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Persona < results[j].Persona })
	return results
}

func (o *Orchestrator) dispatchOne(ctx context.Context, persona string, validation record.Validation, def record.Definition) Result {
	correlationID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	if o.Limiter != nil {
		if err := o.Limiter.Wait(ctx); err != nil {
			return Result{Persona: persona, CorrelationID: correlationID, Status: StatusMissing, Error: err.Error()}
		}
	}

	task, err := llm.RenderPersonaTask(persona)
	if err != nil {
		return Result{Persona: persona, CorrelationID: correlationID, Status: StatusMissing, Error: err.Error()}
	}

	promptContext := map[string]any{
		"definition":      def,
		"aggregate":       validation.Aggregate,
		"regime_breakdown": validation.Aggregate.PerRegime,
		"verdict":         validation.Verdict,
	}

	var assessment Assessment
	if err := o.Provider.Dispatch(ctx, task, promptContext, &assessment); err != nil {
		return Result{Persona: persona, CorrelationID: correlationID, Status: StatusMissing, Error: err.Error()}
	}

	return Result{Persona: persona, CorrelationID: correlationID, Status: StatusOK, Assessment: assessment}
}

func (o *Orchestrator) synthesize(ctx context.Context, results []Result) (Synthesis, error) {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	promptContext := map[string]any{"persona_results": results}

	var synthesis Synthesis
	if err := o.Provider.Dispatch(ctx, synthesizerTask, promptContext, &synthesis); err != nil {
		return Synthesis{}, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "synthesizer dispatch")
	}
	return synthesis, nil
}
