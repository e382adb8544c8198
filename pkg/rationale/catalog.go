// Package rationale implements Rationale Inference (C4): when a
// strategy's source does not state its edge, an isolated sub-agent
// matches the definition against a fixed catalog of documented factors
// and structural edges, producing provenance and confidence that feed
// downstream trust calibration but never gate progression (spec §4.5).
package rationale

// catalog is the fixed set of documented factors and structural edges
// the sub-agent is asked to match a definition against (spec §4.5).
var catalog = []string{
	"momentum",
	"value",
	"quality",
	"low_volatility",
	"carry",
	"post_earnings_announcement_drift",
	"index_rebalancing",
	"calendar_effects",
	"volatility_risk_premium",
}

// Catalog returns a copy of the fixed factor catalog, so callers cannot
// modify the package's own list.
func Catalog() []string {
	return append([]string(nil), catalog...)
}
