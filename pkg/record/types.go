// Package record implements the Record Store (C1): persistence for
// Strategy, Validation, Learning, Proposal, and Idea records, the
// strategy state machine (spec §4.1), monotonic id allocation, and
// hash-chained append-only lineage.
package record

import "time"

// State is a Strategy Record's position in the state machine of spec §4.1.
type State string

const (
	StatePending         State = "PENDING"
	StateVerifying       State = "VERIFYING"
	StateBlocked         State = "BLOCKED"
	StateReadyToGenerate State = "READY_TO_GENERATE"
	StateGenerating      State = "GENERATING"
	StateNeedsReview     State = "NEEDS_REVIEW" // tier-3 human-review gate, spec §9
	StateGenFailed       State = "GEN_FAILED"
	StateReadyToExecute  State = "READY_TO_EXECUTE"
	StateExecuting       State = "EXECUTING"
	StateAnalyzing       State = "ANALYZING"
	StateValidated       State = "VALIDATED"
	StateConditional     State = "CONDITIONAL"
	StateInvalidated     State = "INVALIDATED"
	StateArchived        State = "ARCHIVED"
	StateRejected        State = "REJECTED"
	StateError           State = "ERROR"
)

// Tier is the strategy document's declared complexity tier, which
// determines which code-generation path C6 takes.
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// EdgeCategory classifies why a strategy's edge is believed to exist.
type EdgeCategory string

const (
	EdgeStructural   EdgeCategory = "structural"
	EdgeBehavioral   EdgeCategory = "behavioral"
	EdgeInformational EdgeCategory = "informational"
	EdgeRiskPremium  EdgeCategory = "risk_premium"
)

// RationaleSource is the provenance of a strategy's stated edge (C4).
type RationaleSource string

const (
	SourceStated    RationaleSource = "source_stated"
	SourceEnhanced  RationaleSource = "source_enhanced"
	SourceInferred  RationaleSource = "inferred"
	SourceUnknown   RationaleSource = "unknown"
)

// Confidence is a coarse confidence level attached to rationale inference.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IngestionDecision is the Ingestion Quality Filter's routing decision (C3).
type IngestionDecision string

const (
	DecisionAccept  IngestionDecision = "accept"
	DecisionQueue   IngestionDecision = "queue"
	DecisionArchive IngestionDecision = "archive"
	DecisionReject  IngestionDecision = "reject"
)

// MatchKind is the Similarity Index's classification of a candidate
// definition against the existing catalog (C2).
type MatchKind string

const (
	MatchDuplicate MatchKind = "duplicate"
	MatchVariant   MatchKind = "variant"
	MatchNew       MatchKind = "new"
)

// Provenance records where a strategy draft came from.
type Provenance struct {
	SourceRef         string `yaml:"source_ref" json:"source_ref"`
	Excerpt           string `yaml:"excerpt" json:"excerpt"`
	SourceContentHash string `yaml:"source_content_hash" json:"source_content_hash"`
	AuthorCredibility int    `yaml:"author_credibility" json:"author_credibility"` // 0-100
}

// Edge describes a strategy's claimed economic mechanism (spec §3.1).
type Edge struct {
	Mechanism        string       `yaml:"mechanism" json:"mechanism"`
	Category         EdgeCategory `yaml:"category" json:"category"`
	WhyExists        string       `yaml:"why_exists" json:"why_exists"`
	Counterparty     string       `yaml:"counterparty" json:"counterparty"`
	WhyPersists      string       `yaml:"why_persists" json:"why_persists"`
	DecayConditions  string       `yaml:"decay_conditions" json:"decay_conditions"`
	CapacityEstimate string       `yaml:"capacity_estimate" json:"capacity_estimate"`
}

// EdgeProvenance is the output of Rationale Inference (C4).
type EdgeProvenance struct {
	Source          RationaleSource `yaml:"source" json:"source"`
	Confidence      Confidence      `yaml:"confidence" json:"confidence"`
	FactorAlignment []string        `yaml:"factor_alignment" json:"factor_alignment"`
	ResearchNotes   string          `yaml:"research_notes" json:"research_notes"`
}

// IngestionQuality holds the Ingestion Quality Filter's output (C3).
type IngestionQuality struct {
	SpecificityScore int               `yaml:"specificity_score" json:"specificity_score"`
	TrustScore       int               `yaml:"trust_score" json:"trust_score"`
	HardRedFlags     []string          `yaml:"hard_red_flags" json:"hard_red_flags"`
	SoftRedFlags     []string          `yaml:"soft_red_flags" json:"soft_red_flags"`
	Decision         IngestionDecision `yaml:"decision" json:"decision"`
}

// Definition is the strategy's declarative trading logic, the subtree
// hashed to produce DefinitionHash (spec §3.1).
type Definition struct {
	Tier               Tier           `yaml:"tier" json:"tier"`
	Universe           string         `yaml:"universe" json:"universe"`
	Entry              string         `yaml:"entry" json:"entry"`
	Position           string         `yaml:"position" json:"position"`
	Exit               string         `yaml:"exit" json:"exit"`
	PositionManagement string         `yaml:"position_management" json:"position_management"`
	RegimeAdaptive     map[string]any `yaml:"regime_adaptive,omitempty" json:"regime_adaptive,omitempty"`
	DataRequirements   []string       `yaml:"data_requirements" json:"data_requirements"`
	Assumptions        []string       `yaml:"assumptions" json:"assumptions"`
	Risks              []string       `yaml:"risks" json:"risks"`
	Parameters         map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	MaxLeverage        float64        `yaml:"max_leverage" json:"max_leverage"`
}

// Lineage links a record to its parent(s) for variant/composite tracking.
type Lineage struct {
	Parents []string `yaml:"parents" json:"parents"`
}

// Strategy is the Strategy Record of spec §3.1, identified by STRAT-NNN.
type Strategy struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
	State     State     `yaml:"state" json:"state"`
	Lineage   Lineage   `yaml:"lineage" json:"lineage"`

	Provenance Provenance `yaml:"provenance" json:"provenance"`
	Definition Definition `yaml:"definition" json:"definition"`
	Edge       Edge       `yaml:"edge" json:"edge"`

	EdgeProvenance   EdgeProvenance   `yaml:"edge_provenance" json:"edge_provenance"`
	IngestionQuality IngestionQuality `yaml:"ingestion_quality" json:"ingestion_quality"`

	DefinitionHash string `yaml:"definition_hash" json:"definition_hash"`

	// Tag records a similarity-index classification ("variant" etc.);
	// empty for an ordinary new strategy.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`

	// ErrorCause is set when State == StateError.
	ErrorCause string `yaml:"error_cause,omitempty" json:"error_cause,omitempty"`
}

// WindowMetrics are the per-window results computed by C7 (spec §4.8).
type WindowMetrics struct {
	CAGR            float64 `yaml:"cagr" json:"cagr"`
	Sharpe          float64 `yaml:"sharpe" json:"sharpe"`
	Sortino         float64 `yaml:"sortino" json:"sortino"`
	MaxDrawdown     float64 `yaml:"max_drawdown" json:"max_drawdown"`
	WinRate         float64 `yaml:"win_rate" json:"win_rate"`
	ProfitFactor    float64 `yaml:"profit_factor" json:"profit_factor"`
	TradeCount      int     `yaml:"trade_count" json:"trade_count"`
	Volatility      float64 `yaml:"volatility" json:"volatility"`
	BenchmarkSharpe float64 `yaml:"benchmark_sharpe" json:"benchmark_sharpe"`
	BenchmarkCAGR   float64 `yaml:"benchmark_cagr" json:"benchmark_cagr"`
}

// RegimeTags is the five-dimension label assigned to a window (C8).
type RegimeTags struct {
	Direction  string `yaml:"direction" json:"direction"`
	Volatility string `yaml:"volatility" json:"volatility"`
	Rates      string `yaml:"rates" json:"rates"`
	Sector     string `yaml:"sector" json:"sector"`
	Cap        string `yaml:"cap" json:"cap"`
}

// WindowResult is one walk-forward window's outcome, immutable once
// written (spec §4.8, P4).
type WindowResult struct {
	Index     int           `yaml:"index" json:"index"`
	Start     time.Time     `yaml:"start" json:"start"`
	End       time.Time     `yaml:"end" json:"end"`
	Status    string        `yaml:"status" json:"status"` // ok | error
	Error     string        `yaml:"error,omitempty" json:"error,omitempty"`
	Metrics   WindowMetrics `yaml:"metrics" json:"metrics"`
	Regime    RegimeTags    `yaml:"regime" json:"regime"`
}

// RegimeAggregate is a per-regime-bucket rollup (spec §4.10).
type RegimeAggregate struct {
	Bucket      string  `yaml:"bucket" json:"bucket"`
	MeanSharpe  float64 `yaml:"mean_sharpe" json:"mean_sharpe"`
	WindowCount int     `yaml:"window_count" json:"window_count"`
}

// Aggregate holds the Statistical Validator's computed aggregates (C9).
type Aggregate struct {
	MeanSharpe     float64           `yaml:"mean_sharpe" json:"mean_sharpe"`
	SharpeCILow    float64           `yaml:"sharpe_ci_low" json:"sharpe_ci_low"`
	SharpeCIHigh   float64           `yaml:"sharpe_ci_high" json:"sharpe_ci_high"`
	Consistency    float64           `yaml:"consistency" json:"consistency"`
	RawPValue      float64           `yaml:"raw_p_value" json:"raw_p_value"`
	AdjustedPValue float64           `yaml:"adjusted_p_value" json:"adjusted_p_value"`
	CorrectionUsed string            `yaml:"correction_used" json:"correction_used"`
	FamilySize     int               `yaml:"family_size" json:"family_size"`
	MaxDrawdown    float64           `yaml:"max_drawdown" json:"max_drawdown"`
	PerRegime      []RegimeAggregate `yaml:"per_regime" json:"per_regime"`
}

// Verdict is the Statistical Validator's conclusion (spec §3.1).
type Verdict string

const (
	VerdictValidated   Verdict = "VALIDATED"
	VerdictConditional Verdict = "CONDITIONAL"
	VerdictInvalidated Verdict = "INVALIDATED"
	VerdictBlocked     Verdict = "BLOCKED"
	VerdictError       Verdict = "ERROR"
)

// Validation is the Validation Record of spec §3.1: immutable once
// written, keyed by (strategy_id, definition_hash, code_hash, timestamp).
type Validation struct {
	StrategyID     string         `yaml:"strategy_id" json:"strategy_id"`
	DefinitionHash string         `yaml:"definition_hash" json:"definition_hash"`
	CodeHash       string         `yaml:"code_hash" json:"code_hash"`
	GeneratorVersion string       `yaml:"generator_version" json:"generator_version"`
	Timestamp      time.Time      `yaml:"timestamp" json:"timestamp"`
	Windows        []WindowResult `yaml:"windows" json:"windows"`
	Aggregate      Aggregate      `yaml:"aggregate" json:"aggregate"`
	AppliedGates   []string       `yaml:"applied_gates" json:"applied_gates"`
	PassingRegimes []string       `yaml:"passing_regimes,omitempty" json:"passing_regimes,omitempty"`
	Verdict        Verdict        `yaml:"verdict" json:"verdict"`
}

// Learning is an append-only structured insight keyed by analytical
// dimension, linking one or more Validation records (spec §3.1).
type Learning struct {
	ID              string    `yaml:"id" json:"id"`
	CreatedAt       time.Time `yaml:"created_at" json:"created_at"`
	StrategyID      string    `yaml:"strategy_id" json:"strategy_id"`
	ValidationRefs  []string  `yaml:"validation_refs" json:"validation_refs"`
	Dimension       string    `yaml:"dimension" json:"dimension"`
	Insight         string    `yaml:"insight" json:"insight"`
	SupportingFacts []string  `yaml:"supporting_facts" json:"supporting_facts"`
}

// ProposalStatus is a Proposal Record's review state (spec §3.1).
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
	ProposalDeferred ProposalStatus = "deferred"
)

// ProposalKind classifies what a Proposal Record proposes (spec §3.1).
type ProposalKind string

const (
	ProposalComposite      ProposalKind = "composite_strategy"
	ProposalEnhancement    ProposalKind = "enhancement_variant"
	ProposalDataAcquisition ProposalKind = "data_acquisition"
	ProposalRefinedHypothesis ProposalKind = "refined_hypothesis"
)

// Proposal is the Proposal Record of spec §3.1, identified by PROP-NNN.
type Proposal struct {
	ID         string         `yaml:"id" json:"id"`
	CreatedAt  time.Time      `yaml:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `yaml:"updated_at" json:"updated_at"`
	Kind       ProposalKind   `yaml:"kind" json:"kind"`
	Status     ProposalStatus `yaml:"status" json:"status"`
	Rationale  string         `yaml:"rationale" json:"rationale"`
	ProposedDefinition *Definition `yaml:"proposed_definition,omitempty" json:"proposed_definition,omitempty"`
	SourceValidation   string `yaml:"source_validation" json:"source_validation"`
	RejectionReason    string `yaml:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	// Lineage names the strategies this proposal derives from (e.g. the
	// legs of a composite); checked for cycles at approval (spec §9).
	Lineage Lineage `yaml:"lineage" json:"lineage"`

	// CreatedStrategyID is set once Approve has materialized
	// ProposedDefinition into a Strategy Record.
	CreatedStrategyID string `yaml:"created_strategy_id,omitempty" json:"created_strategy_id,omitempty"`
}

// Idea is the Idea Record of spec §3.1, identified by IDEA-NNN.
type Idea struct {
	ID         string    `yaml:"id" json:"id"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
	Persona    string    `yaml:"persona" json:"persona"`
	Lineage    Lineage   `yaml:"lineage" json:"lineage"`
	Sketch     Definition `yaml:"sketch" json:"sketch"`
	Rationale  string    `yaml:"rationale" json:"rationale"`
}
