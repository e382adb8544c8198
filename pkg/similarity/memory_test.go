package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extremevalue/research-kit/pkg/record"
)

func TestMemoryIndexClassifiesNewAgainstEmptyCatalog(t *testing.T) {
	idx := NewMemoryIndex()
	match, err := idx.Classify(context.Background(), def("sp500", "rsi below 30", "rsi above 70", "fixed fraction"))
	require.NoError(t, err)
	assert.Equal(t, record.MatchNew, match.Kind)
}

func TestMemoryIndexFlagsDuplicate(t *testing.T) {
	idx := NewMemoryIndex()
	d := def("sp500", "rsi below 30", "rsi above 70", "fixed fraction")
	require.NoError(t, idx.Add(context.Background(), "STRAT-001", d))

	match, err := idx.Classify(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, record.MatchDuplicate, match.Kind)
	assert.Equal(t, "STRAT-001", match.MatchedID)
}

func TestMemoryIndexFlagsVariant(t *testing.T) {
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(context.Background(), "STRAT-001",
		def("sp500", "rsi below 30", "rsi above 70", "fixed fraction")))

	match, err := idx.Classify(context.Background(), def("sp500", "rsi below 30", "rsi above 70", "volatility target sizing"))
	require.NoError(t, err)
	assert.Equal(t, record.MatchVariant, match.Kind)
}

func TestMemoryIndexClassifiesUnrelatedDefinitionAsNew(t *testing.T) {
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(context.Background(), "STRAT-001",
		def("sp500", "rsi below 30", "rsi above 70", "fixed fraction")))

	match, err := idx.Classify(context.Background(), def("crypto majors", "funding rate negative", "funding rate positive", "kelly sizing"))
	require.NoError(t, err)
	assert.Equal(t, record.MatchNew, match.Kind)
}
