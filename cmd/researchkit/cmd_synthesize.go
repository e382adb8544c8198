package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/extremevalue/research-kit/pkg/persona"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/logging"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <strategy-id>",
	Short: "Dispatch the persona roster against a strategy's latest validation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSynthesize,
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	strat, err := a.store.GetStrategy(id)
	if err != nil {
		return err
	}
	validations, err := a.store.ListValidations(id)
	if err != nil {
		return err
	}
	if len(validations) == 0 {
		return fmt.Errorf("%s has no validations to synthesize", id)
	}
	latest := validations[len(validations)-1]

	ctx := context.Background()
	start := time.Now()
	synthesis, results, err := a.personas.Analyze(ctx, latest, strat.Definition)
	a.metrics.ObserveStage("synthesize", time.Since(start))

	for _, r := range results {
		if r.Status == persona.StatusMissing {
			a.metrics.RecordPersonaTimeout(r.Persona)
		}
	}
	if err != nil {
		return err
	}

	logging.Outcome(logging.Stage(a.logger, id, "synthesize", strat.DefinitionHash), string(synthesis.Status))

	now := time.Now()

	// C10's output is transformed into persisted records (spec §4.11):
	// the consensus itself is a Learning, each suggested action becomes
	// a reviewable Proposal, and — when the synthesis landed on
	// CONDITIONAL — personas that raised concerns get an Idea seeded
	// from the current definition for a reviewer to vary and resubmit.
	learning := record.Learning{
		StrategyID:      id,
		ValidationRefs:  []string{latest.Timestamp.Format(time.RFC3339)},
		Dimension:       "persona_synthesis",
		Insight:         synthesis.Consensus,
		SupportingFacts: synthesis.Disagreements,
	}
	if err := a.store.AppendLearning(learning, now); err != nil {
		return err
	}

	for _, action := range synthesis.Actions {
		if _, err := a.proposals.Submit(ctx, record.ProposalEnhancement, action, nil, []string{id}, latest.Timestamp.Format(time.RFC3339), now); err != nil {
			return err
		}
	}

	if synthesis.Status == record.VerdictConditional {
		for _, r := range results {
			if r.Status != persona.StatusOK || len(r.Assessment.Concerns) == 0 {
				continue
			}
			rationale := fmt.Sprintf("%s: %v", r.Persona, r.Assessment.Concerns)
			if _, err := a.store.CreateIdea(record.Idea{
				Persona:   r.Persona,
				Lineage:   record.Lineage{Parents: []string{id}},
				Sketch:    strat.Definition,
				Rationale: rationale,
			}, now); err != nil {
				return err
			}
		}
	}

	fmt.Printf("%s synthesis: %s\n%s\n", id, synthesis.Status, synthesis.Consensus)
	for _, r := range results {
		fmt.Printf("  %-20s %s\n", r.Persona, r.Status)
	}
	if len(synthesis.Disagreements) > 0 {
		fmt.Printf("disagreements: %v\n", synthesis.Disagreements)
	}
	if len(synthesis.Actions) > 0 {
		fmt.Printf("suggested actions: %v\n", synthesis.Actions)
	}
	return nil
}
