package codegen

import (
	"strings"
	"testing"

	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func momentumDefinition() record.Definition {
	return record.Definition{
		Tier:        record.Tier1,
		Universe:    "S&P 500 constituents",
		Entry:       "top decile by 12-month momentum, rebalance monthly",
		Exit:        "drop out of top quartile momentum rank",
		Position:    "equal-weight long rotation",
		MaxLeverage: 1.0,
		Parameters:  map[string]any{"lookback_months": 12, "rebalance": "monthly"},
	}
}

func TestDetectArchetypeMatchesMomentumKeywords(t *testing.T) {
	assert.Equal(t, "momentum_rotation", detectArchetype(momentumDefinition()))
}

func TestDetectArchetypePrefersDualMomentumOverMomentum(t *testing.T) {
	d := momentumDefinition()
	d.Entry = "dual momentum: relative momentum rank then absolute momentum filter"
	assert.Equal(t, "dual_momentum", detectArchetype(d))
}

func TestDetectArchetypeFallsBackToGeneric(t *testing.T) {
	d := momentumDefinition()
	d.Entry = "some unrecognized signal crosses a threshold"
	d.Exit = "another unrecognized signal"
	d.Position = "fixed size"
	assert.Equal(t, "generic", detectArchetype(d))
}

func TestGenerateTier1IsDeterministicAcrossRepeatedCalls(t *testing.T) {
	d := momentumDefinition()
	a1, err := generateTier1(d, "v1")
	require.NoError(t, err)
	a2, err := generateTier1(d, "v1")
	require.NoError(t, err)
	assert.Equal(t, a1.Source, a2.Source)
	assert.Equal(t, a1.LogicFingerprint, a2.LogicFingerprint)
}

func TestGenerateTier1RendersParametersAndArchetype(t *testing.T) {
	a, err := generateTier1(momentumDefinition(), "v1")
	require.NoError(t, err)
	assert.Equal(t, record.Tier1, a.Tier)
	assert.True(t, strings.Contains(a.Source, "archetype: momentum_rotation"))
	assert.True(t, strings.Contains(a.Source, "parameter.lookback_months: 12"))
}
