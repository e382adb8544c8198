package walkforward

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/backend"
	"github.com/extremevalue/research-kit/pkg/codegen"
	"github.com/extremevalue/research-kit/pkg/regime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	calls     int64
	failFirst int
	result    backend.Result
	err       error
}

func (f *fakeBackend) Submit(ctx context.Context, artifact codegen.Artifact, dr backend.DateRange, seed int64) (backend.Result, error) {
	n := atomic.AddInt64(&f.calls, 1)
	if int(n) <= f.failFirst {
		return backend.Result{}, errors.New("transient backend failure")
	}
	if f.err != nil {
		return backend.Result{}, f.err
	}
	return f.result, nil
}

type fakeReference struct{}

func (fakeReference) Reference(ctx context.Context, w Window) (regime.Reference, error) {
	return regime.Reference{BroadEquitySMA200: 100, BroadEquityClose: 100}, nil
}

func testWalkForwardConfig() config.WalkForward {
	return config.WalkForward{
		WindowCount:   4,
		WindowSpan:    90 * 24 * time.Hour,
		MaxConcurrent: 2,
		MaxRetries:    2,
	}
}

func sampleResult() backend.Result {
	returns := make([]float64, 60)
	for i := range returns {
		returns[i] = 0.001
	}
	return backend.Result{Returns: returns, Trades: []backend.Trade{{Return: 0.01}}}
}

func TestExecutorRunProducesOneResultPerWindow(t *testing.T) {
	be := &fakeBackend{result: sampleResult()}
	exec := NewExecutor(be, fakeReference{}, nil, 2)

	results, err := exec.Run(context.Background(), codegen.Artifact{CodeHash: "hash1"}, "def1", "code1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), testWalkForwardConfig(), 1)

	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, "ok", r.Status)
		assert.NotEmpty(t, r.Regime.Direction)
	}
}

func TestExecutorRecoversFromTransientBackendFailureViaRetry(t *testing.T) {
	be := &fakeBackend{failFirst: 1, result: sampleResult()}
	exec := NewExecutor(be, fakeReference{}, nil, 2)

	results, err := exec.Run(context.Background(), codegen.Artifact{CodeHash: "hash2"}, "def2", "code2",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), config.WalkForward{
			WindowCount: 1, WindowSpan: 90 * 24 * time.Hour, MaxConcurrent: 1, MaxRetries: 2,
		}, 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Status)
}

func TestExecutorMarksWindowErrorOnPersistentBackendFailureWithoutFailingRun(t *testing.T) {
	be := &fakeBackend{err: errors.New("permanent failure")}
	exec := NewExecutor(be, fakeReference{}, nil, 1)

	results, err := exec.Run(context.Background(), codegen.Artifact{CodeHash: "hash3"}, "def3", "code3",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), testWalkForwardConfig(), 1)

	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, "error", r.Status)
		assert.NotEmpty(t, r.Error)
	}
}

type blockingBackend struct {
	calls   int64
	release chan struct{}
	result  backend.Result
}

func (b *blockingBackend) Submit(ctx context.Context, artifact codegen.Artifact, dr backend.DateRange, seed int64) (backend.Result, error) {
	atomic.AddInt64(&b.calls, 1)
	<-b.release
	return b.result, nil
}

func TestExecutorCollapsesConcurrentRunsForSameDefinitionAndCodeHash(t *testing.T) {
	be := &blockingBackend{release: make(chan struct{}), result: sampleResult()}
	exec := NewExecutor(be, fakeReference{}, nil, 1)

	cfg := config.WalkForward{WindowCount: 1, WindowSpan: 90 * 24 * time.Hour, MaxConcurrent: 1, MaxRetries: 0}
	referenceEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	done := make(chan struct{})
	var err1, err2 error
	go func() {
		_, err1 = exec.Run(context.Background(), codegen.Artifact{CodeHash: "shared"}, "defS", "codeS", referenceEnd, cfg, 1)
		done <- struct{}{}
	}()

	// Give the first call time to register as in-flight before the
	// second arrives, so singleflight is guaranteed to observe an
	// already-running call under this key.
	time.Sleep(20 * time.Millisecond)
	go func() {
		_, err2 = exec.Run(context.Background(), codegen.Artifact{CodeHash: "shared"}, "defS", "codeS", referenceEnd, cfg, 1)
		done <- struct{}{}
	}()

	time.Sleep(20 * time.Millisecond)
	close(be.release)
	<-done
	<-done

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, int64(1), atomic.LoadInt64(&be.calls), "singleflight must collapse both calls into a single backend dispatch")
}
