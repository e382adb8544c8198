package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"github.com/extremevalue/research-kit/pkg/shared/logging"
)

var learnCmd = &cobra.Command{
	Use:   "learn <strategy-id>",
	Short: "Record a structured learning from a strategy's most recent validation",
	Args:  cobra.ExactArgs(1),
	RunE:  runLearn,
}

func runLearn(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	validations, err := a.store.ListValidations(id)
	if err != nil {
		return err
	}
	if len(validations) == 0 {
		return apperrors.NewNotFoundError("validations for " + id)
	}
	latest := validations[len(validations)-1]

	insight := fmt.Sprintf("verdict %s: mean_sharpe=%.2f consistency=%.2f adjusted_p=%.4f across %d windows",
		latest.Verdict, latest.Aggregate.MeanSharpe, latest.Aggregate.Consistency, latest.Aggregate.AdjustedPValue, len(latest.Windows))

	var facts []string
	for _, g := range latest.AppliedGates {
		facts = append(facts, g)
	}

	now := time.Now()
	learning := record.Learning{
		StrategyID:      id,
		ValidationRefs:  []string{latest.Timestamp.Format(time.RFC3339)},
		Dimension:       "performance",
		Insight:         insight,
		SupportingFacts: facts,
	}
	if err := a.store.AppendLearning(learning, now); err != nil {
		return err
	}

	logging.Outcome(logging.Stage(a.logger, id, "learn", latest.DefinitionHash), "recorded")
	fmt.Printf("%s: %s\n", id, insight)
	return nil
}
