package walkforward

import (
	"context"
	"fmt"
	"time"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/backend"
	"github.com/extremevalue/research-kit/pkg/codegen"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/regime"
	"github.com/extremevalue/research-kit/pkg/resilience"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ReferenceProvider supplies the market reference data a Window is
// tagged against (spec §4.9); an external collaborator abstracted
// behind an interface so tests can inject fixed data.
type ReferenceProvider interface {
	Reference(ctx context.Context, w Window) (regime.Reference, error)
}

// BenchmarkProvider supplies the benchmark return series a Window's
// Sharpe/CAGR are compared against; optional, may be nil.
type BenchmarkProvider interface {
	BenchmarkReturns(ctx context.Context, w Window) ([]float64, error)
}

// Executor runs the Walk-Forward Executor's window slicing and parallel
// dispatch against a configured backend.
type Executor struct {
	Backend    backend.Backend
	Reference  ReferenceProvider
	Benchmark  BenchmarkProvider
	Breaker    *resilience.Breaker
	MaxRetries int

	inflight singleflight.Group
}

// NewExecutor builds an Executor wrapping backend in a circuit breaker
// named for the backend so repeated dispatch failures open it.
func NewExecutor(b backend.Backend, ref ReferenceProvider, bench BenchmarkProvider, maxRetries int) *Executor {
	return &Executor{
		Backend:    b,
		Reference:  ref,
		Benchmark:  bench,
		Breaker:    resilience.NewBreaker("walkforward-backend", 5, time.Minute),
		MaxRetries: maxRetries,
	}
}

// Run slices referenceEnd/cfg into windows, dispatches each in parallel
// up to cfg.MaxConcurrent, and returns one immutable WindowResult per
// window (spec §4.8). Concurrent Run calls sharing the same
// (definitionHash, codeHash) collapse onto a single execution via
// singleflight, the in-process half of OOS one-shot enforcement (the
// durable half lives in record.Store.AppendValidation's idempotence key).
// A window that errors out is recorded as status "error" and does not
// fail the overall run; pkg/statvalidate computes its aggregates over
// the "ok" windows only, and the number of error windows is not itself
// a gate on the verdict.
func (e *Executor) Run(ctx context.Context, artifact codegen.Artifact, definitionHash, codeHash string, referenceEnd time.Time, cfg config.WalkForward, seed int64) ([]record.WindowResult, error) {
	key := definitionHash + ":" + codeHash
	result, err, _ := e.inflight.Do(key, func() (any, error) {
		return e.run(ctx, artifact, referenceEnd, cfg, seed)
	})
	if err != nil {
		return nil, err
	}
	return result.([]record.WindowResult), nil
}

func (e *Executor) run(ctx context.Context, artifact codegen.Artifact, referenceEnd time.Time, cfg config.WalkForward, seed int64) ([]record.WindowResult, error) {
	windows := SliceWindows(referenceEnd, cfg)
	results := make([]record.WindowResult, len(windows))

	group, groupCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, cfg.MaxConcurrent)

	for _, w := range windows {
		w := w
		group.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
			defer func() { <-sem }()

			results[w.Index] = e.runWindow(groupCtx, artifact, w, seed)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "walk-forward window dispatch")
	}
	return results, nil
}

// runWindow executes a single window end-to-end: backend dispatch
// (circuit-breaker-wrapped, retried with exponential backoff), metrics
// computation, and regime tagging. Failures are captured in the
// returned WindowResult rather than propagated, per spec §4.8.
func (e *Executor) runWindow(ctx context.Context, artifact codegen.Artifact, w Window, seed int64) record.WindowResult {
	var result backend.Result
	err := resilience.Retry(ctx, e.MaxRetries, 500*time.Millisecond, func(ctx context.Context) error {
		out, err := e.Breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			return e.Backend.Submit(ctx, artifact, w.dateRange(), seed)
		})
		if err != nil {
			return resilience.Retryable(err)
		}
		result = out.(backend.Result)
		return nil
	})
	if err != nil {
		return record.WindowResult{Index: w.Index, Start: w.Start, End: w.End, Status: "error", Error: err.Error()}
	}

	var benchmarkReturns []float64
	if e.Benchmark != nil {
		benchmarkReturns, _ = e.Benchmark.BenchmarkReturns(ctx, w)
	}
	metrics := computeMetrics(result, benchmarkReturns)

	var tags record.RegimeTags
	if e.Reference != nil {
		ref, refErr := e.Reference.Reference(ctx, w)
		if refErr != nil {
			return record.WindowResult{
				Index: w.Index, Start: w.Start, End: w.End, Status: "error",
				Error: fmt.Sprintf("resolving regime reference: %v", refErr),
			}
		}
		tags = regime.Tag(ref)
	}

	return record.WindowResult{
		Index: w.Index, Start: w.Start, End: w.End, Status: "ok",
		Metrics: metrics, Regime: tags,
	}
}
