package backend

import (
	"context"
	"testing"
	"time"

	"github.com/extremevalue/research-kit/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRange() DateRange {
	return DateRange{
		Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSimulatedBackendIsDeterministicGivenSameInputs(t *testing.T) {
	b := NewSimulatedBackend()
	artifact := codegen.Artifact{CodeHash: "abc123"}

	r1, err := b.Submit(context.Background(), artifact, testRange(), 42)
	require.NoError(t, err)
	r2, err := b.Submit(context.Background(), artifact, testRange(), 42)
	require.NoError(t, err)

	assert.Equal(t, r1.Returns, r2.Returns)
	assert.Equal(t, r1.Trades, r2.Trades)
}

func TestSimulatedBackendVariesWithCodeHash(t *testing.T) {
	b := NewSimulatedBackend()
	r1, err := b.Submit(context.Background(), codegen.Artifact{CodeHash: "abc123"}, testRange(), 42)
	require.NoError(t, err)
	r2, err := b.Submit(context.Background(), codegen.Artifact{CodeHash: "xyz789"}, testRange(), 42)
	require.NoError(t, err)

	assert.NotEqual(t, r1.Returns, r2.Returns)
}

func TestSimulatedBackendVariesWithSeed(t *testing.T) {
	b := NewSimulatedBackend()
	artifact := codegen.Artifact{CodeHash: "abc123"}
	r1, err := b.Submit(context.Background(), artifact, testRange(), 1)
	require.NoError(t, err)
	r2, err := b.Submit(context.Background(), artifact, testRange(), 2)
	require.NoError(t, err)

	assert.NotEqual(t, r1.Returns, r2.Returns)
}

func TestSimulatedBackendRespectsCanceledContext(t *testing.T) {
	b := NewSimulatedBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Submit(ctx, codegen.Artifact{CodeHash: "abc"}, testRange(), 1)
	assert.Error(t, err)
}

func TestSimulatedBackendProducesNonEmptyReturnsForMultiYearWindow(t *testing.T) {
	b := NewSimulatedBackend()
	r, err := b.Submit(context.Background(), codegen.Artifact{CodeHash: "abc"}, testRange(), 1)
	require.NoError(t, err)
	assert.Greater(t, len(r.Returns), 500)
	assert.NotEmpty(t, r.Trades)
}
