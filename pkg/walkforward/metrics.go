package walkforward

import (
	"math"

	"github.com/extremevalue/research-kit/pkg/backend"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
)

// tradingDaysPerYear is the standard annualization convention applied
// to daily return series.
const tradingDaysPerYear = 252

// computeMetrics derives spec §4.8's named window metrics from a
// backend.Result's trade log and return series, optionally against a
// benchmark return series of the same length.
func computeMetrics(result backend.Result, benchmarkReturns []float64) record.WindowMetrics {
	returns := result.Returns
	if len(returns) == 0 {
		return record.WindowMetrics{}
	}

	mean := mathx.Mean(returns)
	stdDev := mathx.StdDev(returns)

	metrics := record.WindowMetrics{
		CAGR:         cagr(returns),
		Sharpe:       annualizedSharpe(mean, stdDev),
		Sortino:      annualizedSortino(returns, mean),
		MaxDrawdown:  maxDrawdown(returns),
		WinRate:      winRate(result.Trades),
		ProfitFactor: profitFactor(result.Trades),
		TradeCount:   len(result.Trades),
		Volatility:   stdDev * math.Sqrt(tradingDaysPerYear),
	}

	if len(benchmarkReturns) > 0 {
		benchMean := mathx.Mean(benchmarkReturns)
		benchStdDev := mathx.StdDev(benchmarkReturns)
		metrics.BenchmarkSharpe = annualizedSharpe(benchMean, benchStdDev)
		metrics.BenchmarkCAGR = cagr(benchmarkReturns)
	}
	return metrics
}

func cagr(returns []float64) float64 {
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	years := float64(len(returns)) / tradingDaysPerYear
	if years <= 0 {
		return 0
	}
	return math.Pow(cumulative, 1/years) - 1
}

func annualizedSharpe(mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (mean / stdDev) * math.Sqrt(tradingDaysPerYear)
}

func annualizedSortino(returns []float64, mean float64) float64 {
	var downsideSumSq float64
	var downsideCount int
	for _, r := range returns {
		if r < 0 {
			downsideSumSq += r * r
			downsideCount++
		}
	}
	if downsideCount == 0 {
		return 0
	}
	downsideDev := math.Sqrt(downsideSumSq / float64(downsideCount))
	if downsideDev == 0 {
		return 0
	}
	return (mean / downsideDev) * math.Sqrt(tradingDaysPerYear)
}

func maxDrawdown(returns []float64) float64 {
	cumulative := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		dd := (peak - cumulative) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func winRate(trades []backend.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.Return > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

func profitFactor(trades []backend.Trade) float64 {
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.Return > 0 {
			grossProfit += t.Return
		} else {
			grossLoss += -t.Return
		}
	}
	if grossLoss == 0 {
		if grossProfit == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return grossProfit / grossLoss
}
