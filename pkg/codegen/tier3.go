package codegen

import (
	"context"
	"strings"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// generateTier3 dispatches free-form generation to a sub-agent for
// definitions that fit neither a tier-1 archetype nor the tier-2 DSL.
// The result always requires human review before validation can
// proceed (spec §4.7: "always routed to human review").
func generateTier3(ctx context.Context, d record.Definition, generatorVersion string, subAgent SubAgentGenerator) (Artifact, error) {
	if subAgent == nil {
		return Artifact{}, apperrors.New(apperrors.ErrorTypeInternal, "tier-3 generation requires a configured sub-agent generator")
	}
	source, err := subAgent.GenerateCode(ctx, d)
	if err != nil {
		return Artifact{}, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "tier-3 sub-agent generation failed")
	}

	tokens := append(strings.Fields(d.Universe), strings.Fields(d.Entry)...)
	tokens = append(tokens, strings.Fields(d.Exit)...)

	return Artifact{
		Source:           source,
		LogicFingerprint: sortedUnique(tokens),
		Tier:             record.Tier3,
		NeedsReview:      true,
	}, nil
}
