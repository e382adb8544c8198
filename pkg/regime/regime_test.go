package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagDirectionThresholds(t *testing.T) {
	assert.Equal(t, "bull", Tag(Reference{BroadEquitySMA200: 100, BroadEquityClose: 106}).Direction)
	assert.Equal(t, "bear", Tag(Reference{BroadEquitySMA200: 100, BroadEquityClose: 94}).Direction)
	assert.Equal(t, "sideways", Tag(Reference{BroadEquitySMA200: 100, BroadEquityClose: 102}).Direction)
	assert.Equal(t, "sideways", Tag(Reference{BroadEquitySMA200: 100, BroadEquityClose: 105}).Direction)
}

func TestTagVolatilityThresholds(t *testing.T) {
	assert.Equal(t, "low", Tag(Reference{ImpliedVolatility: 10}).Volatility)
	assert.Equal(t, "normal", Tag(Reference{ImpliedVolatility: 20}).Volatility)
	assert.Equal(t, "high", Tag(Reference{ImpliedVolatility: 30}).Volatility)
	assert.Equal(t, "normal", Tag(Reference{ImpliedVolatility: 15}).Volatility)
	assert.Equal(t, "normal", Tag(Reference{ImpliedVolatility: 25}).Volatility)
}

func TestTagRatesThresholds(t *testing.T) {
	assert.Equal(t, "rising", Tag(Reference{TreasuryYieldNow: 4.6, TreasuryYieldSixMonthsAgo: 4.0}).Rates)
	assert.Equal(t, "falling", Tag(Reference{TreasuryYieldNow: 3.4, TreasuryYieldSixMonthsAgo: 4.0}).Rates)
	assert.Equal(t, "flat", Tag(Reference{TreasuryYieldNow: 4.1, TreasuryYieldSixMonthsAgo: 4.0}).Rates)
}

func TestTagCapThresholds(t *testing.T) {
	assert.Equal(t, "small", Tag(Reference{SmallCapTrailing3MReturn: 0.10, BroadEquityTrailing3MReturn: 0.02}).Cap)
	assert.Equal(t, "large", Tag(Reference{SmallCapTrailing3MReturn: 0.01, BroadEquityTrailing3MReturn: 0.09}).Cap)
	assert.Equal(t, "mixed", Tag(Reference{SmallCapTrailing3MReturn: 0.03, BroadEquityTrailing3MReturn: 0.02}).Cap)
}

func TestTagSectorPicksHighestTrailingReturn(t *testing.T) {
	ref := Reference{SectorTrailing3MReturn: map[string]float64{
		"technology": 0.04,
		"energy":     0.09,
		"utilities":  -0.01,
	}}
	assert.Equal(t, "energy", Tag(ref).Sector)
}

func TestTagSectorBreaksTiesByName(t *testing.T) {
	ref := Reference{SectorTrailing3MReturn: map[string]float64{
		"technology": 0.05,
		"energy":     0.05,
	}}
	assert.Equal(t, "energy", Tag(ref).Sector)
}

func TestTagSectorEmptyMapYieldsEmptyString(t *testing.T) {
	assert.Equal(t, "", Tag(Reference{}).Sector)
}

func TestTagIsPureAndDeterministic(t *testing.T) {
	ref := Reference{
		BroadEquitySMA200:           100,
		BroadEquityClose:            108,
		ImpliedVolatility:           12,
		TreasuryYieldNow:            3.0,
		TreasuryYieldSixMonthsAgo:   3.9,
		SectorTrailing3MReturn:      map[string]float64{"energy": 0.05},
		SmallCapTrailing3MReturn:    -0.01,
		BroadEquityTrailing3MReturn: 0.01,
	}
	a := Tag(ref)
	b := Tag(ref)
	assert.Equal(t, a, b)
}
