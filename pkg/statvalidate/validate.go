package statvalidate

import (
	"math/rand"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
)

// Validate computes the full aggregate and verdict for a walk-forward
// run (spec §4.10), returning the portion of a Validation record this
// package owns; the caller (cmd/researchkit) fills in StrategyID,
// DefinitionHash, CodeHash, GeneratorVersion, and Timestamp.
// priorRawPValues holds the raw p-values of the other validations in
// this strategy's definition_hash lineage family; see ComputeAggregate.
func Validate(windows []record.WindowResult, priorRawPValues []float64, correction mathx.CorrectionMethod, gates config.Gates, rng *rand.Rand) (record.Aggregate, record.Verdict, []string) {
	agg := ComputeAggregate(windows, priorRawPValues, correction, rng)
	totalTrades := totalTradeCount(windows)
	verdict, passingRegimes := Evaluate(agg, totalTrades, gates)
	return agg, verdict, passingRegimes
}

func totalTradeCount(windows []record.WindowResult) int {
	total := 0
	for _, w := range windows {
		if w.Status == "ok" {
			total += w.Metrics.TradeCount
		}
	}
	return total
}
