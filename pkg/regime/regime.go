// Package regime implements the Regime Tagger (C8): deterministic
// five-dimension labeling of a walk-forward window from reference
// market indicators over the window's date range (spec §4.9).
package regime

import (
	"sort"

	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/shared/mathx"
)

// Reference is the set of raw reference-indicator levels observed over
// a single window's full date range. Sourcing this data (a broad-equity
// index, an implied-volatility index, the 10-year treasury yield,
// sector/small-cap returns) is an external collaborator; the tagger
// only derives the five dimensions and applies the fixed thresholds of
// spec §4.9.
type Reference struct {
	// BroadEquityClose and BroadEquitySMA200 are the broad-equity
	// proxy's closing level and its own 200-day simple moving average,
	// both at the window's end.
	BroadEquityClose  float64
	BroadEquitySMA200 float64
	// ImpliedVolatility is the implied-volatility index's level at the
	// window's end (e.g. a VIX-style index value).
	ImpliedVolatility float64
	// TreasuryYieldNow and TreasuryYieldSixMonthsAgo are the 10-year
	// treasury yield (in percentage points, e.g. 4.25) at the window's
	// end and six months prior.
	TreasuryYieldNow          float64
	TreasuryYieldSixMonthsAgo float64
	// SectorTrailing3MReturn maps each sector name to its trailing
	// 3-month return; the sector with the highest value is reported.
	SectorTrailing3MReturn map[string]float64
	// SmallCapTrailing3MReturn and BroadEquityTrailing3MReturn are each
	// index's trailing 3-month return, compared to derive cap bias.
	SmallCapTrailing3MReturn    float64
	BroadEquityTrailing3MReturn float64
}

// Tag labels ref across all five dimensions using the fixed thresholds
// of spec §4.9. Tagging is a pure function of ref: no hidden state, no
// randomness, so the same reference values always produce the same tags.
func Tag(ref Reference) record.RegimeTags {
	vsSMA200 := mathx.PercentChange(ref.BroadEquitySMA200, ref.BroadEquityClose)
	rateChangeBP := (ref.TreasuryYieldNow - ref.TreasuryYieldSixMonthsAgo) * 100
	capSpread := ref.SmallCapTrailing3MReturn - ref.BroadEquityTrailing3MReturn

	return record.RegimeTags{
		Direction:  direction(vsSMA200),
		Volatility: volatility(ref.ImpliedVolatility),
		Rates:      rates(rateChangeBP),
		Sector:     bestSector(ref.SectorTrailing3MReturn),
		Cap:        cap(capSpread),
	}
}

func direction(pctVsSMA200 float64) string {
	switch {
	case pctVsSMA200 > 0.05:
		return "bull"
	case pctVsSMA200 < -0.05:
		return "bear"
	default:
		return "sideways"
	}
}

func volatility(level float64) string {
	switch {
	case level < 15:
		return "low"
	case level > 25:
		return "high"
	default:
		return "normal"
	}
}

func rates(changeBP float64) string {
	switch {
	case changeBP > 50:
		return "rising"
	case changeBP < -50:
		return "falling"
	default:
		return "flat"
	}
}

func cap(smallVsBroad float64) string {
	switch {
	case smallVsBroad > 0.05:
		return "small"
	case smallVsBroad < -0.05:
		return "large"
	default:
		return "mixed"
	}
}

// bestSector returns the sector with the highest trailing 3-month
// return, breaking ties by name for determinism.
func bestSector(returns map[string]float64) string {
	if len(returns) == 0 {
		return ""
	}
	names := make([]string, 0, len(returns))
	for name := range returns {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if returns[name] > returns[best] {
			best = name
		}
	}
	return best
}
