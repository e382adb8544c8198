package record

import (
	"context"
	"encoding/json"

	"github.com/itchyny/gojq"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

// Query returns every Strategy Record for which the gojq filter
// evaluates truthy, satisfying spec §4.2's query(filter) over state,
// tags, scores, lineage, and dates — all of which are ordinary fields
// on the JSON-shaped record, so a general-purpose jq filter covers the
// whole query surface without a bespoke query language.
//
// Example filters: `.state == "VALIDATED"`, `.tag == "variant"`,
// `.ingestion_quality.trust_score >= 70`, `.lineage.parents | length > 0`.
func (s *Store) Query(ctx context.Context, filter string) ([]Strategy, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "parsing query filter %q", filter)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "compiling query filter %q", filter)
	}

	strategies, err := s.ListStrategies()
	if err != nil {
		return nil, err
	}

	matched := make([]Strategy, 0, len(strategies))
	for _, strat := range strategies {
		ok, err := matches(ctx, code, strat)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, strat)
		}
	}
	return matched, nil
}

func matches(ctx context.Context, code *gojq.Code, strat Strategy) (bool, error) {
	asJSON, err := json.Marshal(strat)
	if err != nil {
		return false, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "marshaling %s for query", strat.ID)
	}
	var input any
	if err := json.Unmarshal(asJSON, &input); err != nil {
		return false, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "decoding %s for query", strat.ID)
	}

	iter := code.RunWithContext(ctx, input)
	v, ok := iter.Next()
	if !ok {
		return false, nil
	}
	if err, isErr := v.(error); isErr {
		return false, apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "evaluating query filter against %s", strat.ID)
	}
	truthy, ok := v.(bool)
	if !ok {
		return false, apperrors.NewValidationError("query filter must evaluate to a boolean")
	}
	return truthy, nil
}
