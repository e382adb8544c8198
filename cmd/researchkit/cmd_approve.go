package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	approveReject string
	approveDefer  bool
)

func init() {
	approveCmd.Flags().StringVar(&approveReject, "reject", "", "reject the proposal instead of approving it, recording this reason (proposals only)")
	approveCmd.Flags().BoolVar(&approveDefer, "defer", false, "defer the proposal instead of approving it, starting its TTL clock (proposals only)")
}

var approveCmd = &cobra.Command{
	Use:   "approve <proposal-id|idea-id>",
	Short: "Approve, reject, or defer a pending proposal, or promote an idea into a strategy",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprove,
}

func runApprove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if approveReject != "" && approveDefer {
		return fmt.Errorf("--reject and --defer are mutually exclusive")
	}

	id := args[0]
	now := time.Now()

	if strings.HasPrefix(id, "IDEA-") {
		if approveReject != "" || approveDefer {
			return fmt.Errorf("--reject and --defer apply only to proposals; ideas are only promoted or left pending")
		}
		strat, err := a.store.ApproveIdea(id, now)
		if err != nil {
			return err
		}
		fmt.Printf("%s promoted to %s\n", id, strat.ID)
		return nil
	}

	switch {
	case approveReject != "":
		proposal, err := a.proposals.Reject(id, approveReject, now)
		if err != nil {
			return err
		}
		fmt.Printf("%s rejected: %s\n", id, proposal.RejectionReason)
	case approveDefer:
		proposal, err := a.proposals.Defer(id, now)
		if err != nil {
			return err
		}
		fmt.Printf("%s deferred (status=%s)\n", id, proposal.Status)
	default:
		proposal, err := a.proposals.Approve(id, now)
		if err != nil {
			return err
		}
		if proposal.CreatedStrategyID != "" {
			fmt.Printf("%s approved, materialized as %s\n", id, proposal.CreatedStrategyID)
		} else {
			fmt.Printf("%s approved (status=%s)\n", id, proposal.Status)
		}
	}
	return nil
}
