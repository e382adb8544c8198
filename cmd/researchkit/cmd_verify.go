package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/logging"
	"github.com/extremevalue/research-kit/pkg/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <strategy-id>",
	Short: "Run the verification checks against a strategy's definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	start := time.Now()
	defer func() { a.metrics.ObserveStage("verify", time.Since(start)) }()

	now := time.Now()
	to := now
	from := now.Add(-a.cfg.WalkForward.WindowSpan * time.Duration(a.cfg.WalkForward.WindowCount))

	results, err := a.verify.Run(ctx, strat.Definition, from, to)
	if err != nil {
		return err
	}

	passed := verify.Passed(results)
	outcome := "blocked"
	to2 := record.StateBlocked
	if passed {
		outcome = "ready_to_generate"
		to2 = record.StateReadyToGenerate
	}

	reason := outcome
	if !passed {
		reason = fmt.Sprintf("verification failed: %v", verify.FailureReasons(results))
	}

	strat, err = a.store.UpdateState(id, record.StateVerifying, to2, reason, now)
	if err != nil {
		return err
	}

	logging.Outcome(logging.Stage(a.logger, id, "verify", strat.DefinitionHash), outcome)

	for _, r := range results {
		status := "pass"
		if !r.Pass {
			status = "fail"
		}
		fmt.Printf("  %-20s %s %s\n", r.Check, status, r.Reason)
	}
	fmt.Printf("%s -> %s\n", id, strat.State)
	return nil
}
