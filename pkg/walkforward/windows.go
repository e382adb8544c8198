// Package walkforward implements the Walk-Forward Executor (C7): window
// slicing, parallel dispatch to a backtest backend, and per-window
// metrics computation (spec §4.8).
package walkforward

import (
	"time"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/backend"
)

// Window is one walk-forward slice, [Start, End), 0-indexed oldest first.
type Window struct {
	Index int
	Start time.Time
	End   time.Time
}

// SliceWindows builds cfg.WindowCount windows of cfg.WindowSpan each,
// ending at referenceEnd; they are fixed-duration offsets from
// referenceEnd, not aligned to calendar boundaries. Consecutive windows are
// spaced cfg.Step apart; a zero Step defaults to WindowSpan, producing
// the non-overlapping default of spec §4.8 (12 windows of 3 years).
// Windows are returned oldest-first.
func SliceWindows(referenceEnd time.Time, cfg config.WalkForward) []Window {
	step := cfg.Step
	if step <= 0 {
		step = cfg.WindowSpan
	}

	lastStart := referenceEnd.Add(-cfg.WindowSpan)
	windows := make([]Window, cfg.WindowCount)
	for i := 0; i < cfg.WindowCount; i++ {
		offsetFromLast := time.Duration(cfg.WindowCount-1-i) * step
		start := lastStart.Add(-offsetFromLast)
		windows[i] = Window{Index: i, Start: start, End: start.Add(cfg.WindowSpan)}
	}
	return windows
}

// dateRange converts a Window to the backend.DateRange it dispatches.
func (w Window) dateRange() backend.DateRange {
	return backend.DateRange{Start: w.Start, End: w.End}
}
