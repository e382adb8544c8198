package verify

import (
	"context"
	"time"

	"github.com/extremevalue/research-kit/pkg/dataregistry"
	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Engine runs the enabled default checks plus any configured Rego
// policies (spec §4.6: "the set is configurable").
type Engine struct {
	enabled  map[CheckName]bool
	registry dataregistry.Registry
	policy   *Policy // optional, nil if no extra Rego checks are configured
}

// New returns an Engine running exactly the named checks (spec
// internal/config's enabled_checks list) against registry.
func New(enabledChecks []string, registry dataregistry.Registry, policy *Policy) *Engine {
	enabled := make(map[CheckName]bool, len(enabledChecks))
	for _, name := range enabledChecks {
		enabled[CheckName(name)] = true
	}
	return &Engine{enabled: enabled, registry: registry, policy: policy}
}

// Run evaluates every enabled check against def and returns all
// results. A strategy cannot proceed (spec §4.6) if any enabled check's
// result has Pass == false; FailureReasons summarizes the failures for a
// transition to BLOCKED.
func (e *Engine) Run(ctx context.Context, def record.Definition, from, to time.Time) ([]Result, error) {
	var results []Result

	add := func(r Result) { results = append(results, r) }

	if e.enabled[CheckLookAhead] {
		add(checkLookAhead(def))
	}
	if e.enabled[CheckSurvivorship] {
		add(checkSurvivorship(def))
	}
	if e.enabled[CheckPositionSizing] {
		add(checkPositionSizing(def))
	}
	if e.enabled[CheckDataAvailability] {
		add(checkDataAvailability(ctx, def, e.registry, from, to))
	}
	if e.enabled[CheckParameterSanity] {
		add(checkParameterSanity(def))
	}
	if e.enabled[CheckHardcodedValues] {
		add(checkHardcodedValues(def))
	}

	if e.policy != nil {
		policyResults, err := e.policy.Evaluate(ctx, def)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "evaluating verification policy")
		}
		results = append(results, policyResults...)
	}

	return results, nil
}

// Passed reports whether every result in results passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

// FailureReasons collects the Reason of every failing result.
func FailureReasons(results []Result) []string {
	var reasons []string
	for _, r := range results {
		if !r.Pass {
			reasons = append(reasons, string(r.Check)+": "+r.Reason)
		}
	}
	return reasons
}

// CrossCheckFingerprint compares the Code Generator's logic fingerprint
// (C6) against the strategy document's own declared indicators and
// universe reference, failing the pre-execution gate on mismatch (spec
// §4.7: "a mismatch fails the pre-execution gate").
func CrossCheckFingerprint(declared, generated []string) Result {
	const fingerprintCheck CheckName = "logic_fingerprint_cross_check"
	declaredSet := toSet(declared)
	for _, g := range generated {
		if !declaredSet[g] {
			return fail(fingerprintCheck, "generated code references "+g+" which the document does not declare")
		}
	}
	return pass(fingerprintCheck)
}

func toSet(xs []string) map[string]bool {
	set := make(map[string]bool, len(xs))
	for _, x := range xs {
		set[x] = true
	}
	return set
}
