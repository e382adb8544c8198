package codegen

import (
	"fmt"
	"strings"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// generateTier2 parses the entry/exit conditions as tier-2 DSL
// expressions and renders their canonical form, covering strategies
// expressible via the declarative expression language but lacking a
// tier-1 archetype match (spec §4.7: "covers ~20%").
func generateTier2(d record.Definition, generatorVersion string) (Artifact, error) {
	entry, err := Parse(d.Entry)
	if err != nil {
		return Artifact{}, apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "parsing tier-2 entry condition")
	}
	exit, err := Parse(d.Exit)
	if err != nil {
		return Artifact{}, apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "parsing tier-2 exit condition")
	}

	var source strings.Builder
	fmt.Fprintf(&source, "archetype: component_assembled\n")
	fmt.Fprintf(&source, "universe: %s\n", d.Universe)
	fmt.Fprintf(&source, "entry: %s\n", entry.Canonical())
	fmt.Fprintf(&source, "exit: %s\n", exit.Canonical())
	fmt.Fprintf(&source, "position: %s\n", d.Position)
	fmt.Fprintf(&source, "max_leverage: %g\n", d.MaxLeverage)
	for _, name := range sortedUnique(mapKeys(d.Parameters)) {
		fmt.Fprintf(&source, "parameter.%s: %v\n", name, d.Parameters[canonicalKey(d.Parameters, name)])
	}

	tokens := append(strings.Fields(d.Universe), entry.Identifiers()...)
	tokens = append(tokens, exit.Identifiers()...)

	return Artifact{Source: source.String(), LogicFingerprint: sortedUnique(tokens), Tier: record.Tier2}, nil
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// canonicalKey recovers the original-case key matching lower, since
// sortedUnique lowercases for the fingerprint but rendering should use
// the definition's own casing.
func canonicalKey(m map[string]any, lower string) string {
	for k := range m {
		if strings.EqualFold(k, lower) {
			return k
		}
	}
	return lower
}
