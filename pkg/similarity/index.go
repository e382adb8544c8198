package similarity

import (
	"context"

	"github.com/extremevalue/research-kit/pkg/record"
)

// Thresholds from spec §4.3.
const (
	DuplicateThreshold = 0.95
	VariantThreshold   = 0.70
)

// Match is the Similarity Index's classification of a candidate
// definition against the catalog.
type Match struct {
	Kind      record.MatchKind
	MatchedID string
	Score     float64
}

// Index is the Similarity Index's interface: append-only during a
// transaction, readers see the last committed version (spec §5).
type Index interface {
	// Classify compares candidate against every indexed definition and
	// returns the single best match, or MatchNew if nothing clears the
	// variant threshold.
	Classify(ctx context.Context, candidate record.Definition) (Match, error)
	// Add indexes id's definition so future Classify calls compare
	// against it.
	Add(ctx context.Context, id string, def record.Definition) error
}

// classify is the shared best-match selection logic used by every
// Index implementation: given the full catalog, find the closest
// fingerprint to candidate and bucket it by threshold.
func classify(candidate Fingerprint, catalog map[string]Fingerprint) Match {
	best := Match{Kind: record.MatchNew}
	for id, fp := range catalog {
		score := Similarity(candidate, fp)
		if score > best.Score {
			best = Match{MatchedID: id, Score: score, Kind: record.MatchNew}
		}
	}
	switch {
	case best.MatchedID == "":
		return Match{Kind: record.MatchNew}
	case best.Score >= DuplicateThreshold:
		best.Kind = record.MatchDuplicate
	case best.Score >= VariantThreshold:
		best.Kind = record.MatchVariant
	default:
		return Match{Kind: record.MatchNew}
	}
	return best
}
