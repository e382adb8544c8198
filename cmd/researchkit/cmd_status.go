package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/extremevalue/research-kit/pkg/record"
)

var statusShowMetrics bool

func init() {
	statusCmd.Flags().BoolVar(&statusShowMetrics, "metrics", false, "dump the Prometheus text exposition instead of the workspace summary")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the workspace, or dump Prometheus metrics with --metrics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if statusShowMetrics {
		return a.metrics.WriteText(os.Stdout)
	}

	strategies, err := a.store.ListStrategies()
	if err != nil {
		return err
	}
	counts := map[record.State]int{}
	for _, s := range strategies {
		counts[s.State]++
	}

	states := make([]string, 0, len(counts))
	for st := range counts {
		states = append(states, string(st))
	}
	sort.Strings(states)

	fmt.Printf("%d strategies\n", len(strategies))
	for _, st := range states {
		fmt.Printf("  %-18s %d\n", st, counts[record.State(st)])
	}

	proposals, err := a.proposals.List("", "")
	if err != nil {
		return err
	}
	pending := 0
	for _, p := range proposals {
		if p.Status == record.ProposalPending {
			pending++
		}
	}
	fmt.Printf("%d proposals (%d pending)\n", len(proposals), pending)
	return nil
}
