// Package backend defines the Backend interface the Walk-Forward
// Executor dispatches backtests through (spec §6: "the core consumes a
// backend offering submit(artifact, date_range, seed) -> result"), and a
// deterministic in-process simulated backend for testing without a real
// backtest engine.
package backend

import (
	"context"
	"time"

	"github.com/extremevalue/research-kit/pkg/codegen"
)

// DateRange bounds the window a single backtest dispatch may observe.
// The backend must not access data outside [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Trade is a single simulated position entry/exit pair.
type Trade struct {
	Entry   time.Time
	Exit    time.Time
	Return  float64
}

// Result carries a backend run's trade log and per-period return series,
// the minimum surface the Walk-Forward Executor needs to compute window
// metrics (spec §4.8).
type Result struct {
	Trades  []Trade
	Returns []float64
}

// Backend is the interface the core consumes; it is agnostic to whether
// the implementation is a local simulated engine or a cloud service
// (spec §6). Submit must be deterministic given (artifact, dateRange,
// seed) and must not read data outside dateRange.
type Backend interface {
	Submit(ctx context.Context, artifact codegen.Artifact, dateRange DateRange, seed int64) (Result, error)
}
