// Package ingestion implements the Ingestion Quality Filter (C3):
// specificity and trust scoring, red-flag detection, and the
// accept/archive/reject routing decision (spec §4.4). Evaluate never
// returns record.DecisionQueue.
package ingestion

import (
	"strings"

	"github.com/extremevalue/research-kit/pkg/record"
)

// Draft is the extracted strategy draft plus the source metadata the
// filter scores (spec §4.4: "operates on an extracted strategy draft
// plus source metadata").
type Draft struct {
	Definition record.Definition
	Provenance record.Provenance

	// EconomicRationale, OOSEvidence, ImplementationRealism,
	// SourceCredibility, and Novelty are the sub-scores composing the
	// trust score (spec §4.4). Each is pre-scored by the caller (typically
	// C4's rationale inference feeding EconomicRationale, and the
	// provenance/extraction pipeline feeding the rest) on the 0-max scale
	// named in the field comment.
	EconomicRationale      int // 0-30
	OOSEvidence            int // 0-25
	ImplementationRealism  int // 0-20
	SourceCredibility      int // 0-15
	Novelty                int // 0-10

	// ClaimedSharpe is the draft's stated Sharpe ratio, if any (0 means
	// not claimed or claimed as zero — either way it cannot trigger the
	// hard flag, since the flag requires a claim > 3.0).
	ClaimedSharpe float64
	IsHFT         bool
	SourceText    string // raw excerpt scanned for hard/soft phrase flags
	SellsCourseOrSignals bool
	NTunableParams       int
	BacktestStartCoincidesWithDrawdownEnd bool

	UnknownRationale          bool
	NoTransactionCostDiscussion bool
	NoDrawdownDiscussion      bool
	SingleMarket              bool
	SingleRegime              bool
	IndependentObservations   int
	Leverage                  float64
	CrowdedFactor             bool
	UnjustifiedMagicNumbers   bool
}

// Specificity computes the 0-8 score of spec §4.4: one point each for
// the presence of entry rules, exit rules, position sizing, universe
// definition, backtest period, out-of-sample evidence, transaction-cost
// discussion, and code or pseudocode.
func (d Draft) Specificity() int {
	score := 0
	if strings.TrimSpace(d.Definition.Entry) != "" {
		score++
	}
	if strings.TrimSpace(d.Definition.Exit) != "" {
		score++
	}
	if strings.TrimSpace(d.Definition.Position) != "" {
		score++
	}
	if strings.TrimSpace(d.Definition.Universe) != "" {
		score++
	}
	if d.hasBacktestPeriod() {
		score++
	}
	if d.OOSEvidence > 0 {
		score++
	}
	if !d.NoTransactionCostDiscussion {
		score++
	}
	if d.hasCodeOrPseudocode() {
		score++
	}
	return score
}

func (d Draft) hasBacktestPeriod() bool {
	return strings.Contains(strings.ToLower(d.SourceText), "backtest") &&
		strings.ContainsAny(d.SourceText, "0123456789")
}

func (d Draft) hasCodeOrPseudocode() bool {
	lower := strings.ToLower(d.SourceText)
	return strings.Contains(lower, "```") || strings.Contains(lower, "pseudocode") ||
		strings.Contains(lower, "def ") || strings.Contains(lower, "function ")
}

// RedFlags evaluates the hard and soft red-flag sets of spec §4.4.
func (d Draft) RedFlags() (hard, soft []string) {
	if d.ClaimedSharpe > 3.0 && !d.IsHFT {
		hard = append(hard, "claimed_sharpe_exceeds_3_for_non_hft")
	}
	lower := strings.ToLower(d.SourceText)
	if strings.Contains(lower, "never had a losing period") {
		hard = append(hard, "claims_never_had_a_losing_period")
	}
	if strings.Contains(lower, "works in all market conditions") {
		hard = append(hard, "claims_works_in_all_market_conditions")
	}
	if d.SellsCourseOrSignals {
		hard = append(hard, "author_sells_courses_or_signals")
	}
	if d.NTunableParams > 5 {
		hard = append(hard, "excess_tunable_parameters")
	}
	if d.BacktestStartCoincidesWithDrawdownEnd {
		hard = append(hard, "backtest_start_coincides_with_drawdown_end")
	}

	if d.UnknownRationale {
		soft = append(soft, "unknown_rationale")
	}
	if d.NoTransactionCostDiscussion {
		soft = append(soft, "no_transaction_cost_discussion")
	}
	if d.NoDrawdownDiscussion {
		soft = append(soft, "no_drawdown_discussion")
	}
	if d.SingleMarket {
		soft = append(soft, "single_market")
	}
	if d.SingleRegime {
		soft = append(soft, "single_regime")
	}
	if d.IndependentObservations > 0 && d.IndependentObservations < 30 {
		soft = append(soft, "small_sample")
	}
	if d.Leverage > 3 {
		soft = append(soft, "excess_leverage")
	}
	if d.CrowdedFactor {
		soft = append(soft, "crowded_factor")
	}
	if d.UnjustifiedMagicNumbers {
		soft = append(soft, "unjustified_magic_numbers")
	}
	return hard, soft
}

// Trust computes the 0-100 trust score of spec §4.4, clamped to the
// documented range; red flags count against the score regardless of
// hard/soft classification ("- 15 × red_flag_count").
func (d Draft) Trust(redFlagCount int) int {
	raw := d.EconomicRationale + d.OOSEvidence + d.ImplementationRealism +
		d.SourceCredibility + d.Novelty - 15*redFlagCount
	return clamp(raw, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Evaluate runs the full Ingestion Quality Filter over draft using the
// configured thresholds and returns the populated IngestionQuality and
// routing decision (spec §4.4's decision table; P9: the decision
// depends only on specificity, trust, and the red-flag set).
func Evaluate(d Draft, specificityThreshold, trustThreshold int) record.IngestionQuality {
	hard, soft := d.RedFlags()
	specificity := d.Specificity()
	trust := d.Trust(len(hard) + len(soft))

	quality := record.IngestionQuality{
		SpecificityScore: specificity,
		TrustScore:       trust,
		HardRedFlags:     hard,
		SoftRedFlags:     soft,
	}

	switch {
	case len(hard) > 0:
		quality.Decision = record.DecisionReject
	case specificity < specificityThreshold:
		quality.Decision = record.DecisionArchive
	case trust < trustThreshold:
		quality.Decision = record.DecisionArchive
	default:
		quality.Decision = record.DecisionAccept
	}
	return quality
}
