package main

import (
	"context"
	"crypto/sha256"
	"math/rand"

	"github.com/extremevalue/research-kit/pkg/regime"
	"github.com/extremevalue/research-kit/pkg/walkforward"
)

// simulatedReference and simulatedBenchmark are the in-process stand-ins
// for the market-data and benchmark-return collaborators the Walk-Forward
// Executor's interfaces abstract (spec §4.9's "external collaborator").
// Like backend.SimulatedBackend, every value is a deterministic function
// of the window bounds, so two runs over the same workspace produce the
// same regime tags and benchmark series.
type simulatedReference struct{}

func windowSeed(w walkforward.Window) int64 {
	sum := sha256.Sum256([]byte(w.Start.String() + "|" + w.End.String()))
	var seed int64
	for i := 0; i < 8; i++ {
		seed |= int64(sum[i]) << (8 * i)
	}
	return seed
}

func (simulatedReference) Reference(ctx context.Context, w walkforward.Window) (regime.Reference, error) {
	if err := ctx.Err(); err != nil {
		return regime.Reference{}, err
	}
	rng := rand.New(rand.NewSource(windowSeed(w)))

	broadClose := 100 + rng.Float64()*20
	broadSMA := broadClose * (1 + (rng.Float64()-0.5)*0.1)

	return regime.Reference{
		BroadEquityClose:            broadClose,
		BroadEquitySMA200:           broadSMA,
		ImpliedVolatility:           12 + rng.Float64()*20,
		TreasuryYieldNow:            3 + rng.Float64()*2,
		TreasuryYieldSixMonthsAgo:   3 + rng.Float64()*2,
		SectorTrailing3MReturn:      map[string]float64{"technology": rng.Float64()*0.2 - 0.1, "energy": rng.Float64()*0.2 - 0.1},
		SmallCapTrailing3MReturn:    rng.Float64()*0.2 - 0.1,
		BroadEquityTrailing3MReturn: rng.Float64()*0.2 - 0.1,
	}, nil
}

type simulatedBenchmark struct{}

func (simulatedBenchmark) BenchmarkReturns(ctx context.Context, w walkforward.Window) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(windowSeed(w) ^ 1))
	days := int(w.End.Sub(w.Start).Hours()/24/365.25*252) + 1
	returns := make([]float64, days)
	for i := range returns {
		returns[i] = rng.NormFloat64()*0.009 + 0.00025
	}
	return returns, nil
}
