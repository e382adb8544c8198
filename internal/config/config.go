// Package config loads and validates the workspace configuration file
// (research-kit.yaml, spec §6) into a single immutable Config, enumerating
// every knob spec.md §9 calls out under "Configuration sprawl": gates,
// enabled checks, ingestion thresholds, persona roster, correction method,
// window count/span, quorum, rate-limit budgets, and provider selection.
// The trust-score sub-score weights are fixed in pkg/ingestion and are
// not configurable here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	validator "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Gates are the thresholds the statistical validator applies; all
// enabled gates must pass for a VALIDATED verdict (spec §4.10).
type Gates struct {
	MinSharpe      float64 `yaml:"min_sharpe" validate:"required"`
	MinConsistency float64 `yaml:"min_consistency" validate:"gte=0,lte=1"`
	MaxDrawdown    float64 `yaml:"max_drawdown" validate:"gt=0"`
	MinTrades      int     `yaml:"min_trades" validate:"gte=0"`
	AdjustedAlpha  float64 `yaml:"adjusted_alpha" validate:"gt=0,lt=1"`
}

// WalkForward controls the window-slicing behavior of C7.
type WalkForward struct {
	WindowCount   int           `yaml:"window_count" validate:"required,gt=0"`
	WindowSpan    time.Duration `yaml:"window_span" validate:"required"`
	Step          time.Duration `yaml:"step"`
	MaxConcurrent int           `yaml:"max_concurrent" validate:"gt=0"`
	MaxRetries    int           `yaml:"max_retries" validate:"gte=0"`
}

// Personas lists the analytical roster and the quorum required for a
// synthesis to proceed (spec §4.11).
type Personas struct {
	Roster  []string `yaml:"roster" validate:"required,min=1"`
	Quorum  int      `yaml:"quorum" validate:"required,gt=0"`
	Timeout time.Duration `yaml:"timeout" validate:"required"`
}

// RateLimit configures the per-resource token bucket (spec §5).
type RateLimit struct {
	Backend RateLimitBucket `yaml:"backend"`
	LLM     RateLimitBucket `yaml:"llm"`
	// Store selects the bucket implementation: "memory" (default,
	// x/time/rate) or "redis" (shared across worker processes).
	Store     string `yaml:"store"`
	RedisAddr string `yaml:"redis_addr"`
}

// RateLimitBucket is a single token-bucket configuration.
type RateLimitBucket struct {
	RatePerSecond float64 `yaml:"rate_per_second" validate:"omitempty,gt=0"`
	Burst         int     `yaml:"burst" validate:"omitempty,gt=0"`
}

// LLMConfig selects and configures the persona/rationale LLM provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider" validate:"required,oneof=anthropic bedrock genai"`
	Model       string        `yaml:"model" validate:"required"`
	Timeout     time.Duration `yaml:"timeout" validate:"required"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0"`
}

// Ingestion configures C3's scoring thresholds.
type Ingestion struct {
	SpecificityThreshold int `yaml:"specificity_threshold" validate:"gte=0,lte=8"`
	TrustThreshold       int `yaml:"trust_threshold" validate:"gte=0,lte=100"`
}

// Similarity configures C2's duplicate/variant thresholds.
type Similarity struct {
	DuplicateThreshold float64 `yaml:"duplicate_threshold" validate:"gt=0,lte=1"`
	VariantThreshold   float64 `yaml:"variant_threshold" validate:"gt=0,lte=1"`
	// Store selects the similarity index backend: "memory" (default) or
	// "postgres" (sqlx+lib/pq backed, see pkg/similarity).
	Store string `yaml:"store"`
	DSN   string `yaml:"dsn"`
}

// Proposals configures C11's TTL pruning.
type Proposals struct {
	DeferredTTL time.Duration `yaml:"deferred_ttl"`
}

// DataSource registers one data requirement's coverage window with the
// Verification Engine's data-availability check (spec §4.6).
type DataSource struct {
	Requirement string    `yaml:"requirement" validate:"required"`
	Source      string    `yaml:"source" validate:"required,oneof=native marketplace custom"`
	From        time.Time `yaml:"from"`
	To          time.Time `yaml:"to"`
}

// Notify configures the optional Slack notifier.
type Notify struct {
	Enabled    bool   `yaml:"enabled"`
	SlackToken string `yaml:"slack_token"`
	Channel    string `yaml:"channel"`
}

// Logging mirrors pkg/shared/logging.Config's YAML shape.
type Logging struct {
	Level  string `yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"required,oneof=json console"`
}

// Config is the fully validated, immutable workspace configuration.
type Config struct {
	WorkspaceRoot string             `yaml:"-"`
	Gates         Gates              `yaml:"gates" validate:"required"`
	EnabledChecks []string           `yaml:"enabled_checks" validate:"required,min=1"`
	WalkForward   WalkForward        `yaml:"walk_forward" validate:"required"`
	Personas      Personas           `yaml:"personas" validate:"required"`
	Correction    string             `yaml:"correction" validate:"required,oneof=fdr bonferroni"`
	RateLimit     RateLimit          `yaml:"rate_limit"`
	LLM           LLMConfig          `yaml:"llm" validate:"required"`
	Ingestion     Ingestion          `yaml:"ingestion"`
	Similarity    Similarity         `yaml:"similarity"`
	Proposals     Proposals          `yaml:"proposals"`
	DataSources   []DataSource       `yaml:"data_sources"`
	Notify        Notify             `yaml:"notify"`
	Logging       Logging            `yaml:"logging" validate:"required"`
}

var validate = validator.New()

// Load reads and validates a research-kit.yaml file at path. The
// workspace root is derived from path's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.WorkspaceRoot = filepath.Dir(path)
	return &cfg, nil
}

// Default returns a Config populated with the defaults named throughout
// spec.md (12 windows of 3 years each, quorum 3 of 5, FDR correction,
// etc.), useful for tests and for scaffolding a new workspace.
func Default() *Config {
	return &Config{
		Gates: Gates{
			MinSharpe:      0.5,
			MinConsistency: 0.6,
			MaxDrawdown:    0.30,
			MinTrades:      30,
			AdjustedAlpha:  0.05,
		},
		EnabledChecks: []string{
			"look_ahead", "survivorship", "position_sizing",
			"data_availability", "parameter_sanity", "hardcoded_values",
		},
		WalkForward: WalkForward{
			WindowCount:   12,
			WindowSpan:    3 * 365 * 24 * time.Hour,
			MaxConcurrent: 4,
			MaxRetries:    3,
		},
		Personas: Personas{
			Roster:  []string{"momentum-trader", "risk-manager", "quant-researcher", "contrarian", "mad-genius"},
			Quorum:  3,
			Timeout: 30 * time.Second,
		},
		Correction: "fdr",
		RateLimit: RateLimit{
			Backend: RateLimitBucket{RatePerSecond: 1, Burst: 2},
			LLM:     RateLimitBucket{RatePerSecond: 5, Burst: 10},
		},
		LLM: LLMConfig{
			Provider:   "anthropic",
			Model:      "claude-sonnet",
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
		Ingestion: Ingestion{SpecificityThreshold: 4, TrustThreshold: 50},
		Similarity: Similarity{
			DuplicateThreshold: 0.95,
			VariantThreshold:   0.70,
			Store:              "memory",
		},
		Proposals: Proposals{DeferredTTL: 30 * 24 * time.Hour},
		Logging:   Logging{Level: "info", Format: "json"},
	}
}
