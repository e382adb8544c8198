package statvalidate

import (
	"math/rand"
	"testing"

	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
	"github.com/stretchr/testify/assert"
)

func okWindow(sharpe float64, direction, volatility string) record.WindowResult {
	return record.WindowResult{
		Status:  "ok",
		Metrics: record.WindowMetrics{Sharpe: sharpe, MaxDrawdown: 0.1, TradeCount: 10},
		Regime:  record.RegimeTags{Direction: direction, Volatility: volatility, Rates: "flat", Sector: "technology", Cap: "mixed"},
	}
}

func TestComputeAggregateSkipsErrorWindows(t *testing.T) {
	windows := []record.WindowResult{
		okWindow(1.0, "bull", "low"),
		{Status: "error"},
		okWindow(1.2, "bull", "low"),
	}
	rng := rand.New(rand.NewSource(1))
	agg := ComputeAggregate(windows, nil, mathx.CorrectionFDR, rng)
	assert.InDelta(t, 1.1, agg.MeanSharpe, 1e-9)
}

func TestComputeAggregateMaxDrawdownIsWorstAcrossWindows(t *testing.T) {
	windows := []record.WindowResult{
		{Status: "ok", Metrics: record.WindowMetrics{Sharpe: 1.0, MaxDrawdown: 0.05}},
		{Status: "ok", Metrics: record.WindowMetrics{Sharpe: 1.0, MaxDrawdown: 0.25}},
	}
	rng := rand.New(rand.NewSource(1))
	agg := ComputeAggregate(windows, nil, mathx.CorrectionFDR, rng)
	assert.Equal(t, 0.25, agg.MaxDrawdown)
}

func TestComputeAggregateFamilySizeAffectsAdjustedPValue(t *testing.T) {
	windows := []record.WindowResult{okWindow(1.0, "bull", "low"), okWindow(1.1, "bull", "low")}
	rng1 := rand.New(rand.NewSource(1))
	small := ComputeAggregate(windows, nil, mathx.CorrectionBonferroni, rng1)
	rng2 := rand.New(rand.NewSource(1))
	large := ComputeAggregate(windows, make([]float64, 9), mathx.CorrectionBonferroni, rng2)

	assert.GreaterOrEqual(t, large.AdjustedPValue, small.AdjustedPValue)
}

func TestPerRegimeAggregatesGroupByDimensionAndValue(t *testing.T) {
	windows := []record.WindowResult{
		okWindow(1.0, "bull", "low"),
		okWindow(2.0, "bull", "low"),
		okWindow(-1.0, "bear", "high"),
	}
	rng := rand.New(rand.NewSource(1))
	agg := ComputeAggregate(windows, nil, mathx.CorrectionFDR, rng)

	var bullDirection, bearDirection *record.RegimeAggregate
	for i := range agg.PerRegime {
		switch agg.PerRegime[i].Bucket {
		case "direction:bull":
			bullDirection = &agg.PerRegime[i]
		case "direction:bear":
			bearDirection = &agg.PerRegime[i]
		}
	}
	assert.NotNil(t, bullDirection)
	assert.Equal(t, 2, bullDirection.WindowCount)
	assert.InDelta(t, 1.5, bullDirection.MeanSharpe, 1e-9)
	assert.NotNil(t, bearDirection)
	assert.Equal(t, 1, bearDirection.WindowCount)
}

func TestPerRegimeAggregatesAreSortedDeterministically(t *testing.T) {
	windows := []record.WindowResult{okWindow(1.0, "bull", "low"), okWindow(-1.0, "bear", "high")}
	rng1 := rand.New(rand.NewSource(1))
	a := ComputeAggregate(windows, nil, mathx.CorrectionFDR, rng1)
	rng2 := rand.New(rand.NewSource(1))
	b := ComputeAggregate(windows, nil, mathx.CorrectionFDR, rng2)
	assert.Equal(t, a.PerRegime, b.PerRegime)
}
