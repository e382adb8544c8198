package backend

import (
	"context"
	"crypto/sha256"
	"math"
	"math/rand"
	"time"

	"github.com/extremevalue/research-kit/pkg/codegen"
)

// SimulatedBackend is an in-process stand-in for a real backtest engine
// (the "local engine" of spec §6), used for development and testing
// without a LEAN/QuantConnect dependency. It derives a deterministic
// daily return series from (artifact.CodeHash, dateRange, seed): same
// inputs always produce the same trade log and returns, matching the
// Backend contract's determinism requirement.
type SimulatedBackend struct {
	// TradingDaysPerYear controls how many synthetic daily bars a
	// DateRange is expanded into; 252 (the standard convention) if 0.
	TradingDaysPerYear int
}

// NewSimulatedBackend returns a SimulatedBackend with the standard
// 252-trading-day convention.
func NewSimulatedBackend() *SimulatedBackend {
	return &SimulatedBackend{TradingDaysPerYear: 252}
}

func (b *SimulatedBackend) Submit(ctx context.Context, artifact codegen.Artifact, dateRange DateRange, seed int64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	days := b.TradingDaysPerYear
	if days == 0 {
		days = 252
	}
	years := dateRange.End.Sub(dateRange.Start).Hours() / (24 * 365.25)
	bars := int(years*float64(days)) + 1
	if bars < 1 {
		bars = 1
	}

	rng := rand.New(rand.NewSource(deriveSeed(artifact.CodeHash, seed)))

	returns := make([]float64, bars)
	var trades []Trade
	cursor := dateRange.Start
	step := dateRange.End.Sub(dateRange.Start) / time.Duration(bars)
	for i := 0; i < bars; i++ {
		// Gaussian daily return around a small positive drift, scaled to
		// a plausible daily volatility; deterministic given rng's seed.
		r := rng.NormFloat64()*0.01 + 0.0003
		returns[i] = r

		if math.Mod(float64(i), 5) == 0 {
			entry := cursor
			exit := cursor.Add(step * 5)
			if exit.After(dateRange.End) {
				exit = dateRange.End
			}
			trades = append(trades, Trade{Entry: entry, Exit: exit, Return: r * 5})
		}
		cursor = cursor.Add(step)
	}

	return Result{Trades: trades, Returns: returns}, nil
}

// deriveSeed folds codeHash and the caller's seed into a single int64
// source seed, so the same artifact always yields the same series for a
// given seed, and different code always yields a different series.
func deriveSeed(codeHash string, seed int64) int64 {
	sum := sha256.Sum256([]byte(codeHash))
	var hashSeed int64
	for i := 0; i < 8; i++ {
		hashSeed |= int64(sum[i]) << (8 * i)
	}
	return hashSeed ^ seed
}
