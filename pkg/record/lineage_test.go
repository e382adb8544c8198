package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTransitionChainsHashesAcrossEntries(t *testing.T) {
	dir := t.TempDir()

	h1, err := appendTransition(dir, "STRAT-001", StatePending, StateVerifying, "ingested", fixedTime())
	require.NoError(t, err)
	assert.NotEmpty(t, h1)

	h2, err := appendTransition(dir, "STRAT-001", StateVerifying, StateReadyToGenerate, "checks passed", fixedTime())
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	last, err := lastEntryHash(transitionLogPath(dir, "STRAT-001"))
	require.NoError(t, err)
	assert.Equal(t, h2, last)
}

func TestAppendTransitionKeepsPerRecordLogsIndependent(t *testing.T) {
	dir := t.TempDir()
	_, err := appendTransition(dir, "STRAT-001", StatePending, StateVerifying, "a", fixedTime())
	require.NoError(t, err)

	last, err := lastEntryHash(transitionLogPath(dir, "STRAT-002"))
	require.NoError(t, err)
	assert.Empty(t, last, "a record with no logged transitions has no chain yet")
}

func staticLookup(parents map[string][]string) StrategyLookup {
	return func(id string) (Lineage, error) {
		return Lineage{Parents: parents[id]}, nil
	}
}

func TestResolveLineageWalksTransitively(t *testing.T) {
	lookup := staticLookup(map[string][]string{
		"STRAT-003": {"STRAT-002"},
		"STRAT-002": {"STRAT-001"},
		"STRAT-001": nil,
	})

	ancestors, err := ResolveLineage("STRAT-003", lookup)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"STRAT-002", "STRAT-001"}, ancestors)
}

func TestResolveLineageDetectsCycles(t *testing.T) {
	lookup := staticLookup(map[string][]string{
		"STRAT-001": {"STRAT-002"},
		"STRAT-002": {"STRAT-001"},
	})

	_, err := ResolveLineage("STRAT-001", lookup)
	assert.Error(t, err)
}

func TestWouldIntroduceCycleRejectsABackEdge(t *testing.T) {
	lookup := staticLookup(map[string][]string{
		"STRAT-002": {"STRAT-001"},
		"STRAT-001": nil,
	})

	would, err := WouldIntroduceCycle("STRAT-001", []string{"STRAT-002"}, lookup)
	require.NoError(t, err)
	assert.True(t, would, "STRAT-001 is already an ancestor of STRAT-002")
}

func TestWouldIntroduceCycleAllowsAFreshParent(t *testing.T) {
	lookup := staticLookup(map[string][]string{
		"STRAT-002": {"STRAT-001"},
		"STRAT-001": nil,
	})

	would, err := WouldIntroduceCycle("STRAT-003", []string{"STRAT-002"}, lookup)
	require.NoError(t, err)
	assert.False(t, would)
}
