package verify

import (
	"context"
	"encoding/json"

	"github.com/open-policy-agent/opa/rego"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Policy wraps a prepared Rego query implementing workspace-specific,
// configurable verification rules beyond the default six (spec §4.6:
// "the set is configurable") — e.g. a house rule rejecting a particular
// universe or requiring a minimum historical window. A policy module is
// expected to define a `deny` set of strings, one per violated rule.
type Policy struct {
	query rego.PreparedEvalQuery
}

// CompilePolicy prepares a Rego module (as Rego source text) for
// repeated evaluation. module must define `package verify` and a `deny`
// rule.
func CompilePolicy(ctx context.Context, module string) (*Policy, error) {
	query, err := rego.New(
		rego.Query("data.verify.deny"),
		rego.Module("policy.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "compiling verification policy")
	}
	return &Policy{query: query}, nil
}

// Evaluate runs the compiled policy against def and converts every
// denial into a failing Result; an empty deny set produces a single
// passing Result so the policy's presence is visible in the report.
func (p *Policy) Evaluate(ctx context.Context, def record.Definition) ([]Result, error) {
	const policyCheck CheckName = "configured_policy"

	asJSON, err := json.Marshal(def)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling definition for policy evaluation")
	}
	var input any
	if err := json.Unmarshal(asJSON, &input); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "decoding definition for policy evaluation")
	}

	resultSet, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "running verification policy")
	}

	denials := extractDenials(resultSet)
	if len(denials) == 0 {
		return []Result{pass(policyCheck)}, nil
	}
	results := make([]Result, 0, len(denials))
	for _, reason := range denials {
		results = append(results, fail(policyCheck, reason))
	}
	return results, nil
}

func extractDenials(resultSet rego.ResultSet) []string {
	var denials []string
	for _, result := range resultSet {
		for _, expr := range result.Expressions {
			items, ok := expr.Value.([]any)
			if !ok {
				continue
			}
			for _, item := range items {
				if s, ok := item.(string); ok {
					denials = append(denials, s)
				}
			}
		}
	}
	return denials
}
