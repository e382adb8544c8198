package statvalidate

import (
	"math/rand"
	"testing"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
	"github.com/stretchr/testify/assert"
)

func okWindowWithTrades(sharpe float64, trades int) record.WindowResult {
	w := okWindow(sharpe, "bull", "low")
	w.Metrics.TradeCount = trades
	return w
}

func TestValidateReturnsValidatedForStrongConsistentWindows(t *testing.T) {
	windows := []record.WindowResult{
		okWindowWithTrades(1.2, 20),
		okWindowWithTrades(1.3, 20),
		okWindowWithTrades(1.1, 20),
	}
	gates := config.Gates{MinSharpe: 0.5, MinConsistency: 0.5, MaxDrawdown: 0.5, MinTrades: 30, AdjustedAlpha: 0.5}
	rng := rand.New(rand.NewSource(7))

	agg, verdict, passing := Validate(windows, nil, mathx.CorrectionFDR, gates, rng)

	assert.Equal(t, record.VerdictValidated, verdict)
	assert.Nil(t, passing)
	assert.Equal(t, 3, len(windows))
	assert.Greater(t, agg.MeanSharpe, 0.5)
}

func TestValidateCountsOnlyOkWindowTrades(t *testing.T) {
	windows := []record.WindowResult{
		okWindowWithTrades(1.0, 15),
		{Status: "error", Metrics: record.WindowMetrics{TradeCount: 1000}},
	}
	gates := config.Gates{MinSharpe: 0.1, MinConsistency: 0.1, MaxDrawdown: 0.9, MinTrades: 16, AdjustedAlpha: 0.9}
	rng := rand.New(rand.NewSource(3))

	_, verdict, _ := Validate(windows, nil, mathx.CorrectionFDR, gates, rng)

	assert.Equal(t, record.VerdictInvalidated, verdict)
}

func TestValidateIsDeterministicForIdenticalInputsAndSeed(t *testing.T) {
	windows := []record.WindowResult{
		okWindowWithTrades(0.9, 10),
		okWindowWithTrades(-0.4, 10),
		okWindowWithTrades(0.2, 10),
	}
	gates := config.Gates{MinSharpe: 0.5, MinConsistency: 0.6, MaxDrawdown: 0.3, MinTrades: 5, AdjustedAlpha: 0.05}

	agg1, verdict1, passing1 := Validate(windows, nil, mathx.CorrectionBonferroni, gates, rand.New(rand.NewSource(42)))
	agg2, verdict2, passing2 := Validate(windows, nil, mathx.CorrectionBonferroni, gates, rand.New(rand.NewSource(42)))

	assert.Equal(t, agg1, agg2)
	assert.Equal(t, verdict1, verdict2)
	assert.Equal(t, passing1, passing2)
}
