package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/extremevalue/research-kit/pkg/record"
)

var (
	listStatus string
	listKind   string
)

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter proposals by status (pending|approved|rejected|deferred)")
	listCmd.Flags().StringVar(&listKind, "kind", "", "filter proposals by kind")
}

var listCmd = &cobra.Command{
	Use:   "list <strategies|proposals|ideas>",
	Short: "List records of the given kind",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "strategies":
		strategies, err := a.store.ListStrategies()
		if err != nil {
			return err
		}
		for _, s := range strategies {
			fmt.Printf("%-10s %-10s %s\n", s.ID, s.State, s.Name)
		}
	case "proposals":
		proposals, err := a.proposals.List(record.ProposalStatus(listStatus), record.ProposalKind(listKind))
		if err != nil {
			return err
		}
		for _, p := range proposals {
			fmt.Printf("%-10s %-10s %-22s %s\n", p.ID, p.Status, p.Kind, p.Rationale)
		}
	case "ideas":
		ideas, err := a.store.ListIdeas()
		if err != nil {
			return err
		}
		for _, idea := range ideas {
			fmt.Printf("%-10s %-20s %s\n", idea.ID, idea.Persona, idea.Rationale)
		}
	default:
		return fmt.Errorf("unknown list target %q: expected strategies, proposals, or ideas", args[0])
	}
	return nil
}
