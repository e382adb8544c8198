package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/extremevalue/research-kit/pkg/backend"
	"github.com/extremevalue/research-kit/pkg/codegen"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/logging"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
	"github.com/extremevalue/research-kit/pkg/statvalidate"
	"github.com/extremevalue/research-kit/pkg/walkforward"
)

const generatorVersion = "researchkit-codegen-v1"

var approveReview bool

func init() {
	validateCmd.Flags().BoolVar(&approveReview, "approve-review", false, "approve a tier-3 artifact currently parked in NEEDS_REVIEW and continue validation")
}

var validateCmd = &cobra.Command{
	Use:   "validate <strategy-id>",
	Short: "Generate code and run walk-forward statistical validation",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	ctx := context.Background()
	now := time.Now()

	strat, err := a.store.GetStrategy(id)
	if err != nil {
		return err
	}

	if strat.State == record.StateNeedsReview {
		if !approveReview {
			return fmt.Errorf("%s is parked at NEEDS_REVIEW; rerun with --approve-review once the tier-3 artifact has been reviewed", id)
		}
		if strat, err = a.store.UpdateState(id, record.StateNeedsReview, record.StateReadyToExecute, "tier-3 artifact approved", now); err != nil {
			return err
		}
	}

	var artifact codegen.Artifact

	if strat.State == record.StateReadyToGenerate {
		strat, err = a.store.UpdateState(id, record.StateReadyToGenerate, record.StateGenerating, "generating", now)
		if err != nil {
			return err
		}

		start := time.Now()
		artifact, err = codegen.Generate(ctx, strat.Definition, generatorVersion, llmCodeGenerator{provider: a.provider})
		a.metrics.ObserveStage("codegen", time.Since(start))
		if err != nil {
			if _, stateErr := a.store.UpdateState(id, record.StateGenerating, record.StateGenFailed, err.Error(), now); stateErr != nil {
				return stateErr
			}
			return err
		}

		if artifact.NeedsReview {
			strat, err = a.store.UpdateState(id, record.StateGenerating, record.StateNeedsReview, "tier-3 artifact requires human review", now)
			if err != nil {
				return err
			}
			fmt.Printf("%s parked at NEEDS_REVIEW; rerun `validate %s --approve-review` once reviewed\n", id, id)
			return nil
		}

		strat, err = a.store.UpdateState(id, record.StateGenerating, record.StateReadyToExecute, "code generated", now)
		if err != nil {
			return err
		}
	} else {
		// Regenerate deterministically (P2): the artifact itself is
		// never persisted, only its CodeHash, so NEEDS_REVIEW resumption
		// and plain re-validation both rebuild it from the definition.
		artifact, err = codegen.Generate(ctx, strat.Definition, generatorVersion, llmCodeGenerator{provider: a.provider})
		if err != nil {
			return err
		}
	}

	if strat.State != record.StateReadyToExecute {
		return fmt.Errorf("%s is in state %s, not ready for walk-forward validation", id, strat.State)
	}

	strat, err = a.store.UpdateState(id, record.StateReadyToExecute, record.StateExecuting, "walk-forward execution", now)
	if err != nil {
		return err
	}

	executor := walkforward.NewExecutor(backend.NewSimulatedBackend(), simulatedReference{}, simulatedBenchmark{}, a.cfg.WalkForward.MaxRetries)

	stageStart := time.Now()
	windows, err := executor.Run(ctx, artifact, strat.DefinitionHash, artifact.CodeHash, now, a.cfg.WalkForward, rand.Int63())
	a.metrics.ObserveStage("walk_forward", time.Since(stageStart))
	if err != nil {
		return err
	}
	for _, w := range windows {
		if w.Status == "error" {
			a.metrics.RecordWindowError("simulated", w.Error)
		}
	}

	strat, err = a.store.UpdateState(id, record.StateExecuting, record.StateAnalyzing, "statistical validation", now)
	if err != nil {
		return err
	}

	existing, err := a.store.ListValidations(id)
	if err != nil {
		return err
	}
	priorRawPValues := make([]float64, len(existing))
	for i, v := range existing {
		priorRawPValues[i] = v.Aggregate.RawPValue
	}

	correction := mathx.CorrectionFDR
	if a.cfg.Correction == string(mathx.CorrectionBonferroni) {
		correction = mathx.CorrectionBonferroni
	}

	statStart := time.Now()
	agg, verdict, passingRegimes := statvalidate.Validate(windows, priorRawPValues, correction, a.cfg.Gates, nil)
	a.metrics.ObserveStage("statvalidate", time.Since(statStart))

	totalTrades := 0
	for _, w := range windows {
		if w.Status == "ok" {
			totalTrades += w.Metrics.TradeCount
		}
	}
	for _, gate := range statvalidate.AppliedGates() {
		failed := false
		for _, f := range statvalidate.FailedGates(agg, totalTrades, a.cfg.Gates) {
			if f == gate {
				failed = true
			}
		}
		a.metrics.RecordGatePass(gate, !failed)
	}

	validation := record.Validation{
		StrategyID:       id,
		DefinitionHash:   strat.DefinitionHash,
		CodeHash:         artifact.CodeHash,
		GeneratorVersion: generatorVersion,
		Timestamp:        now,
		Windows:          windows,
		Aggregate:        agg,
		AppliedGates:     statvalidate.AppliedGates(),
		PassingRegimes:   passingRegimes,
		Verdict:          verdict,
	}
	if err := a.store.AppendValidation(validation, false); err != nil {
		return err
	}

	var toState record.State
	switch verdict {
	case record.VerdictValidated:
		toState = record.StateValidated
	case record.VerdictConditional:
		toState = record.StateConditional
	default:
		toState = record.StateInvalidated
	}
	strat, err = a.store.UpdateState(id, record.StateAnalyzing, toState, string(verdict), now)
	if err != nil {
		return err
	}

	logging.Outcome(logging.Stage(a.logger, id, "validate", strat.DefinitionHash), string(verdict))
	fmt.Printf("%s -> %s (mean_sharpe=%.2f consistency=%.2f adjusted_p=%.4f)\n",
		id, strat.State, agg.MeanSharpe, agg.Consistency, agg.AdjustedPValue)
	return nil
}
