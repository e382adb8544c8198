package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/extremevalue/research-kit/pkg/ingestion"
	"github.com/extremevalue/research-kit/pkg/rationale"
	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"github.com/extremevalue/research-kit/pkg/shared/logging"
)

// ingestInput is the YAML shape an operator hands researchkit for a new
// strategy draft: the declarative definition plus the raw scoring
// inputs ingestion.Draft needs, minus EconomicRationale — which this
// command derives from C4's rationale inference rather than asking the
// operator to self-score their own strategy's economic mechanism.
type ingestInput struct {
	Name       string            `yaml:"name"`
	Definition record.Definition `yaml:"definition"`
	Provenance record.Provenance `yaml:"provenance"`
	Edge       record.Edge       `yaml:"edge"`

	OOSEvidence           int `yaml:"oos_evidence"`
	ImplementationRealism int `yaml:"implementation_realism"`
	SourceCredibility     int `yaml:"source_credibility"`
	Novelty               int `yaml:"novelty"`

	ClaimedSharpe                          float64 `yaml:"claimed_sharpe"`
	IsHFT                                   bool    `yaml:"is_hft"`
	SourceText                              string  `yaml:"source_text"`
	SellsCourseOrSignals                   bool    `yaml:"sells_course_or_signals"`
	NTunableParams                         int     `yaml:"n_tunable_params"`
	BacktestStartCoincidesWithDrawdownEnd  bool    `yaml:"backtest_start_coincides_with_drawdown_end"`
	NoTransactionCostDiscussion            bool    `yaml:"no_transaction_cost_discussion"`
	NoDrawdownDiscussion                   bool    `yaml:"no_drawdown_discussion"`
	SingleMarket                           bool    `yaml:"single_market"`
	SingleRegime                           bool    `yaml:"single_regime"`
	IndependentObservations                int     `yaml:"independent_observations"`
	Leverage                               float64 `yaml:"leverage"`
	CrowdedFactor                          bool    `yaml:"crowded_factor"`
	UnjustifiedMagicNumbers                bool    `yaml:"unjustified_magic_numbers"`
}

// economicRationaleScore maps C4's coarse confidence onto the 0-30
// sub-score ingestion.Draft.Trust expects; rationale inference never
// gates progression (spec §4.5), so a failed inference still scores as
// "unknown" rather than aborting ingestion.
func economicRationaleScore(confidence record.Confidence) int {
	switch confidence {
	case record.ConfidenceHigh:
		return 30
	case record.ConfidenceMedium:
		return 18
	default:
		return 6
	}
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <draft.yaml>",
	Short: "Score and register a new strategy draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading draft %s: %w", args[0], err)
	}
	var in ingestInput
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parsing draft %s: %w", args[0], err)
	}

	ctx := context.Background()
	start := time.Now()
	defer func() { a.metrics.ObserveStage("ingestion", time.Since(start)) }()

	contentHash := record.ContentHash(raw)
	existingStrategies, err := a.store.ListStrategies()
	if err != nil {
		return err
	}
	for _, existing := range existingStrategies {
		if existing.Provenance.SourceContentHash == contentHash {
			fmt.Printf("%s already ingested this source (content hash %s); skipping re-ingestion\n", existing.ID, contentHash)
			return nil
		}
	}
	in.Provenance.SourceContentHash = contentHash

	provenance := rationale.InferOrUnknown(ctx, a.provider, in.Definition, in.Edge)

	draft := ingestion.Draft{
		Definition:                            in.Definition,
		Provenance:                             in.Provenance,
		EconomicRationale:                      economicRationaleScore(provenance.Confidence),
		OOSEvidence:                            in.OOSEvidence,
		ImplementationRealism:                  in.ImplementationRealism,
		SourceCredibility:                      in.SourceCredibility,
		Novelty:                                in.Novelty,
		ClaimedSharpe:                          in.ClaimedSharpe,
		IsHFT:                                  in.IsHFT,
		SourceText:                             in.SourceText,
		SellsCourseOrSignals:                   in.SellsCourseOrSignals,
		NTunableParams:                         in.NTunableParams,
		BacktestStartCoincidesWithDrawdownEnd:  in.BacktestStartCoincidesWithDrawdownEnd,
		NoTransactionCostDiscussion:            in.NoTransactionCostDiscussion,
		NoDrawdownDiscussion:                   in.NoDrawdownDiscussion,
		SingleMarket:                           in.SingleMarket,
		SingleRegime:                           in.SingleRegime,
		IndependentObservations:                in.IndependentObservations,
		Leverage:                               in.Leverage,
		CrowdedFactor:                          in.CrowdedFactor,
		UnjustifiedMagicNumbers:                in.UnjustifiedMagicNumbers,
	}

	quality := ingestion.Evaluate(draft, a.cfg.Ingestion.SpecificityThreshold, a.cfg.Ingestion.TrustThreshold)

	match, err := a.similarity.Classify(ctx, in.Definition)
	if err != nil {
		return err
	}
	if match.Kind == record.MatchDuplicate {
		return apperrors.NewConflictError("duplicate of existing strategy").
			WithDetailsf("matched_id=%s score=%.2f", match.MatchedID, match.Score)
	}

	now := time.Now()
	strat, err := a.store.CreateStrategy(record.Strategy{
		Name:             in.Name,
		Provenance:       in.Provenance,
		Definition:       in.Definition,
		Edge:             in.Edge,
		EdgeProvenance:   provenance,
		IngestionQuality: quality,
		Tag:              string(match.Kind),
	}, now)
	if err != nil {
		return err
	}

	if err := a.similarity.Add(ctx, strat.ID, in.Definition); err != nil {
		return err
	}

	logging.Outcome(logging.Stage(a.logger, strat.ID, "ingestion", strat.DefinitionHash), string(quality.Decision),
		zap.Int("specificity", quality.SpecificityScore), zap.Int("trust", quality.TrustScore))

	switch quality.Decision {
	case record.DecisionAccept:
		strat, err = a.store.UpdateState(strat.ID, record.StatePending, record.StateVerifying, "accepted at ingestion", now)
	case record.DecisionArchive:
		strat, err = a.store.UpdateState(strat.ID, record.StatePending, record.StateArchived, "archived at ingestion: below threshold", now)
	case record.DecisionReject:
		strat, err = a.store.UpdateState(strat.ID, record.StatePending, record.StateRejected, "rejected at ingestion: hard red flag", now)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s ingested: decision=%s state=%s similarity=%s(%s,%.2f)\n",
		strat.ID, quality.Decision, strat.State, match.Kind, match.MatchedID, match.Score)
	return nil
}
