// Package codegen implements the Code Generator (C6): a pure function
// of (strategy_definition, generator_version) producing a backtest
// artifact (spec §4.7).
package codegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Artifact is the Code Generator's output: a self-contained backtest
// definition consuming a time range supplied by the Walk-Forward
// Executor (spec §4.7). It never embeds a date.
type Artifact struct {
	Source           string
	CodeHash         string
	LogicFingerprint []string
	Tier             record.Tier
	NeedsReview      bool
}

var literalDateInArtifactRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

// SubAgentGenerator is the interface tier-3 free-form generation
// dispatches through (spec §4.7's sub-agent path); cmd/researchkit's
// llmCodeGenerator implements it over pkg/llm.Provider.
type SubAgentGenerator interface {
	GenerateCode(ctx context.Context, def record.Definition) (string, error)
}

// Generate is the Code Generator's entry point. Output is byte-identical
// for a fixed (definition_hash, generator_version) because it is a pure
// function of def and generatorVersion with no external state (P2); any
// emitted literal date is treated as a generation error (P3).
func Generate(ctx context.Context, def record.Definition, generatorVersion string, subAgent SubAgentGenerator) (Artifact, error) {
	var artifact Artifact
	var err error

	switch def.Tier {
	case record.Tier1:
		artifact, err = generateTier1(def, generatorVersion)
	case record.Tier2:
		artifact, err = generateTier2(def, generatorVersion)
	case record.Tier3:
		artifact, err = generateTier3(ctx, def, generatorVersion, subAgent)
	default:
		return Artifact{}, apperrors.Newf(apperrors.ErrorTypeValidation, "unknown generation tier %d", def.Tier)
	}
	if err != nil {
		return Artifact{}, err
	}

	if literalDateInArtifactRe.MatchString(artifact.Source) {
		return Artifact{}, apperrors.New(apperrors.ErrorTypeValidation,
			"generated artifact contains a literal calendar date")
	}

	artifact.CodeHash = codeHash(artifact.Source, generatorVersion)
	return artifact, nil
}

func codeHash(source, generatorVersion string) string {
	sum := sha256.Sum256([]byte(generatorVersion + "\x00" + source))
	return hex.EncodeToString(sum[:])
}

// sortedUnique returns ids deduplicated and sorted, the canonical form
// a logic fingerprint is compared and cross-checked in (spec §4.7:
// "the set of indicators, conditions, and universe references").
func sortedUnique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		lower := strings.ToLower(id)
		if !seen[lower] {
			seen[lower] = true
			out = append(out, lower)
		}
	}
	sort.Strings(out)
	return out
}
