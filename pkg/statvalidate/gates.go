package statvalidate

import (
	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/record"
)

// appliedGateNames is the fixed set of gates spec §4.10 names; all five
// are always evaluated (config.Gates has no per-gate enable/disable).
var appliedGateNames = []string{"min_sharpe", "min_consistency", "max_drawdown", "min_trades", "adjusted_p_value"}

// gateResult is one named gate's pass/fail outcome.
type gateResult struct {
	name string
	pass bool
}

func evaluateGateChecks(agg record.Aggregate, totalTrades int, gates config.Gates) []gateResult {
	return []gateResult{
		{"min_sharpe", agg.MeanSharpe >= gates.MinSharpe},
		{"min_consistency", agg.Consistency >= gates.MinConsistency},
		{"max_drawdown", agg.MaxDrawdown <= gates.MaxDrawdown},
		{"min_trades", totalTrades >= gates.MinTrades},
		{"adjusted_p_value", agg.AdjustedPValue < gates.AdjustedAlpha},
	}
}

// Evaluate applies gates to agg (spec §4.10): VALIDATED if every gate
// passes; CONDITIONAL if at least one regime bucket independently
// clears min_sharpe over at least minWindowsForRegimeSuccess windows (the passing
// buckets are recorded in PassingRegimes); INVALIDATED otherwise.
func Evaluate(agg record.Aggregate, totalTrades int, gates config.Gates) (verdict record.Verdict, passingRegimes []string) {
	checks := evaluateGateChecks(agg, totalTrades, gates)

	allPass := true
	for _, c := range checks {
		if !c.pass {
			allPass = false
			break
		}
	}
	if allPass {
		return record.VerdictValidated, nil
	}

	for _, bucket := range agg.PerRegime {
		if bucket.MeanSharpe >= gates.MinSharpe && bucket.WindowCount >= minWindowsForRegimeSuccess {
			passingRegimes = append(passingRegimes, bucket.Bucket)
		}
	}
	if len(passingRegimes) > 0 {
		return record.VerdictConditional, passingRegimes
	}
	return record.VerdictInvalidated, nil
}

// minWindowsForRegimeSuccess is the minimum window count a regime
// bucket must carry before its mean Sharpe is trusted as a signal
// rather than noise from one or two lucky windows.
const minWindowsForRegimeSuccess = 2

// AppliedGates returns the fixed gate-name list recorded on every
// Validation record (spec §3.1's applied_gates field).
func AppliedGates() []string {
	return append([]string(nil), appliedGateNames...)
}

// FailedGates returns the subset of appliedGateNames that failed,
// useful for logging/diagnostics without re-running Evaluate.
func FailedGates(agg record.Aggregate, totalTrades int, gates config.Gates) []string {
	var failed []string
	for _, c := range evaluateGateChecks(agg, totalTrades, gates) {
		if !c.pass {
			failed = append(failed, c.name)
		}
	}
	return failed
}
