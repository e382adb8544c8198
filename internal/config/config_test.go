package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
gates:
  min_sharpe: 0.5
  min_consistency: 0.6
  max_drawdown: 0.3
  min_trades: 30
  adjusted_alpha: 0.05

enabled_checks:
  - look_ahead
  - survivorship
  - position_sizing
  - data_availability
  - parameter_sanity
  - hardcoded_values

walk_forward:
  window_count: 12
  window_span: 26280h
  max_concurrent: 4
  max_retries: 3

personas:
  roster:
    - momentum-trader
    - risk-manager
    - quant-researcher
  quorum: 2
  timeout: 30s

correction: fdr

llm:
  provider: anthropic
  model: claude-sonnet
  timeout: 60s
  max_retries: 3

ingestion:
  specificity_threshold: 4
  trust_threshold: 50

similarity:
  duplicate_threshold: 0.95
  variant_threshold: 0.70
  store: memory

logging:
  level: info
  format: json
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "research-kit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Gates.MinSharpe)
	assert.Equal(t, 12, cfg.WalkForward.WindowCount)
	assert.Equal(t, 2, cfg.Personas.Quorum)
	assert.Equal(t, "fdr", cfg.Correction)
	assert.Equal(t, filepath.Dir(path), cfg.WorkspaceRoot)
}

func TestLoadRejectsMissingRequiredField(t *testing.T) {
	path := writeConfig(t, `
gates:
  min_consistency: 0.6
  max_drawdown: 0.3
  min_trades: 30
  adjusted_alpha: 0.05
enabled_checks: [look_ahead]
walk_forward: {window_count: 1, window_span: 1h, max_concurrent: 1}
personas: {roster: [x], quorum: 1, timeout: 1s}
correction: fdr
llm: {provider: anthropic, model: m, timeout: 1s}
logging: {level: info, format: json}
`)
	_, err := Load(path)
	assert.Error(t, err, "min_sharpe is required and should fail validation when absent")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	bad := validConfig + "\n" // will be overridden below
	_ = bad
	path := writeConfig(t, `
gates: {min_sharpe: 0.1, min_consistency: 0.1, max_drawdown: 0.1, min_trades: 1, adjusted_alpha: 0.05}
enabled_checks: [look_ahead]
walk_forward: {window_count: 1, window_span: 1h, max_concurrent: 1}
personas: {roster: [x], quorum: 1, timeout: 1s}
correction: fdr
llm: {provider: not-a-real-provider, model: m, timeout: 1s}
logging: {level: info, format: json}
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/research-kit.yaml")
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, validate.Struct(cfg))
}
