// Package statvalidate implements the Statistical Validator (C9):
// bootstrap confidence intervals, multiple-testing correction,
// consistency, per-regime aggregation, gate evaluation, and verdict
// assignment over a Walk-Forward Executor run (spec §4.10).
package statvalidate

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
)

// BootstrapResamples is the minimum resample count spec §4.10 requires.
const BootstrapResamples = 1000

// ComputeAggregate derives spec §4.10's statistics from windows. rng
// lets callers inject a seeded source for reproducible tests; nil uses
// mathx's default. priorRawPValues holds the raw p-values of every
// other validation sharing this strategy's definition_hash lineage
// (see DESIGN.md's resolution of the family-size Open Question); this
// run's own raw p-value is appended to that set before the correction
// is applied family-wide, so AdjustedPValue reflects the full family
// rather than a single-value approximation.
func ComputeAggregate(windows []record.WindowResult, priorRawPValues []float64, correction mathx.CorrectionMethod, rng *rand.Rand) record.Aggregate {
	sharpes := okSharpes(windows)

	lo, hi := mathx.BootstrapCI(sharpes, BootstrapResamples, 0.95, rng)
	rawP := mathx.ZeroSkillPValue(sharpes, BootstrapResamples, rng)

	family := make([]float64, len(priorRawPValues)+1)
	copy(family, priorRawPValues)
	family[len(family)-1] = rawP

	var adjusted []float64
	switch correction {
	case mathx.CorrectionBonferroni:
		adjusted = mathx.AdjustFamilyBonferroni(family)
	default:
		adjusted = mathx.AdjustFamilyFDR(family)
	}
	adjP := adjusted[len(adjusted)-1]

	return record.Aggregate{
		MeanSharpe:     mathx.Mean(sharpes),
		SharpeCILow:    lo,
		SharpeCIHigh:   hi,
		Consistency:    mathx.Consistency(sharpes),
		RawPValue:      rawP,
		AdjustedPValue: adjP,
		CorrectionUsed: string(correction),
		FamilySize:     len(family),
		MaxDrawdown:    maxWindowDrawdown(windows),
		PerRegime:      perRegimeAggregates(windows),
	}
}

func okSharpes(windows []record.WindowResult) []float64 {
	var sharpes []float64
	for _, w := range windows {
		if w.Status == "ok" {
			sharpes = append(sharpes, w.Metrics.Sharpe)
		}
	}
	return sharpes
}

func maxWindowDrawdown(windows []record.WindowResult) float64 {
	var max float64
	for _, w := range windows {
		if w.Status == "ok" && w.Metrics.MaxDrawdown > max {
			max = w.Metrics.MaxDrawdown
		}
	}
	return max
}

// perRegimeAggregates rolls windows up independently across each of the
// five regime dimensions (spec §4.9/§4.10: "per-regime aggregate Sharpe
// and window count"), bucketed as "<dimension>:<value>" so the five
// dimensions never collide, e.g. "direction:bull", "volatility:high".
func perRegimeAggregates(windows []record.WindowResult) []record.RegimeAggregate {
	type bucketStats struct {
		sum   float64
		count int
	}
	buckets := map[string]*bucketStats{}

	addBucket := func(dimension, value string, sharpe float64) {
		if value == "" {
			return
		}
		key := fmt.Sprintf("%s:%s", dimension, value)
		b, ok := buckets[key]
		if !ok {
			b = &bucketStats{}
			buckets[key] = b
		}
		b.sum += sharpe
		b.count++
	}

	for _, w := range windows {
		if w.Status != "ok" {
			continue
		}
		addBucket("direction", w.Regime.Direction, w.Metrics.Sharpe)
		addBucket("volatility", w.Regime.Volatility, w.Metrics.Sharpe)
		addBucket("rates", w.Regime.Rates, w.Metrics.Sharpe)
		addBucket("sector", w.Regime.Sector, w.Metrics.Sharpe)
		addBucket("cap", w.Regime.Cap, w.Metrics.Sharpe)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	aggregates := make([]record.RegimeAggregate, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		aggregates = append(aggregates, record.RegimeAggregate{
			Bucket:      k,
			MeanSharpe:  b.sum / float64(b.count),
			WindowCount: b.count,
		})
	}
	return aggregates
}
