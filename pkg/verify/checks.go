// Package verify implements the Verification Engine (C5): static,
// deterministic checks on a strategy document (spec §4.6).
package verify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/extremevalue/research-kit/pkg/dataregistry"
	"github.com/extremevalue/research-kit/pkg/record"
)

// CheckName identifies one of the default checks of spec §4.6.
type CheckName string

const (
	CheckLookAhead        CheckName = "look_ahead"
	CheckSurvivorship     CheckName = "survivorship"
	CheckPositionSizing   CheckName = "position_sizing"
	CheckDataAvailability CheckName = "data_availability"
	CheckParameterSanity  CheckName = "parameter_sanity"
	CheckHardcodedValues  CheckName = "hardcoded_values"
)

// Result is one check's outcome; a failing check always carries Reason.
type Result struct {
	Check  CheckName
	Pass   bool
	Reason string
}

func pass(name CheckName) Result          { return Result{Check: name, Pass: true} }
func fail(name CheckName, reason string) Result { return Result{Check: name, Pass: false, Reason: reason} }

var lookAheadPhrases = []string{
	"same bar close", "same-bar close", "today's close before",
	"intraday close at decision time", "uses today's announcement before",
}

// checkLookAhead flags phrasing indicating a datum is referenced before
// it would actually be observable (spec §4.6's look-ahead bias check).
func checkLookAhead(d record.Definition) Result {
	text := strings.ToLower(d.Entry + " " + d.Exit + " " + d.Position)
	for _, phrase := range lookAheadPhrases {
		if strings.Contains(text, phrase) {
			return fail(CheckLookAhead, "entry/exit text references a same-bar or pre-announcement datum: "+phrase)
		}
	}
	return pass(CheckLookAhead)
}

// checkSurvivorship requires the universe to be specified as a
// point-in-time membership, not the present-day constituent list.
func checkSurvivorship(d record.Definition) Result {
	universe := strings.ToLower(d.Universe)
	if universe == "" {
		return fail(CheckSurvivorship, "universe is not specified")
	}
	if strings.Contains(universe, "current constituents") {
		return fail(CheckSurvivorship, "universe references current constituents, not point-in-time membership")
	}
	if strings.Contains(universe, "point-in-time") || strings.Contains(universe, "point in time") ||
		strings.Contains(universe, "historical constituents") {
		return pass(CheckSurvivorship)
	}
	return fail(CheckSurvivorship, "universe does not state point-in-time membership")
}

// checkPositionSizing requires a declared sizing method and an implied
// leverage that does not exceed MaxLeverage.
func checkPositionSizing(d record.Definition) Result {
	if strings.TrimSpace(d.Position) == "" {
		return fail(CheckPositionSizing, "no sizing method declared")
	}
	if strings.Contains(strings.ToLower(d.Position), "unbounded") {
		return fail(CheckPositionSizing, "sizing method is unbounded")
	}
	if d.MaxLeverage <= 0 {
		return fail(CheckPositionSizing, "max_leverage must be declared and positive")
	}
	return pass(CheckPositionSizing)
}

// checkDataAvailability requires every DataRequirement to resolve
// against reg across [from, to].
func checkDataAvailability(ctx context.Context, d record.Definition, reg dataregistry.Registry, from, to time.Time) Result {
	for _, requirement := range d.DataRequirements {
		ok, err := reg.Available(requirement, from, to)
		if err != nil {
			return fail(CheckDataAvailability, fmt.Sprintf("checking %s: %v", requirement, err))
		}
		if !ok {
			return fail(CheckDataAvailability, fmt.Sprintf("%s does not resolve for the requested window", requirement))
		}
	}
	return pass(CheckDataAvailability)
}

// checkParameterSanity requires declared parameters to sit within
// plausible bounds (spec §4.6's examples: lookback >= 1, threshold
// within the observed metric range).
func checkParameterSanity(d record.Definition) Result {
	for name, value := range d.Parameters {
		n, ok := asFloat(value)
		if !ok {
			continue
		}
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "lookback") || strings.Contains(lower, "period"):
			if n < 1 {
				return fail(CheckParameterSanity, fmt.Sprintf("%s=%v is below the minimum lookback of 1", name, value))
			}
		case strings.Contains(lower, "threshold") || strings.Contains(lower, "rsi"):
			if n < 0 || n > 100 {
				return fail(CheckParameterSanity, fmt.Sprintf("%s=%v is outside the plausible 0-100 range", name, value))
			}
		}
	}
	return pass(CheckParameterSanity)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

var (
	literalDateRe     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	highPrecisionNumRe = regexp.MustCompile(`\b\d+\.\d{5,}\b`)
)

// checkHardcodedValues flags literal calendar dates or suspiciously
// high-precision fitted constants in the entry/exit conditions.
func checkHardcodedValues(d record.Definition) Result {
	text := d.Entry + " " + d.Exit
	if literalDateRe.MatchString(text) {
		return fail(CheckHardcodedValues, "entry/exit condition contains a literal calendar date")
	}
	if highPrecisionNumRe.MatchString(text) {
		return fail(CheckHardcodedValues, "entry/exit condition contains a suspiciously high-precision constant")
	}
	return pass(CheckHardcodedValues)
}
