// Package similarity implements the Similarity Index (C2): structural
// fingerprinting of a strategy definition and the duplicate/variant/new
// classification of spec §4.3.
package similarity

import (
	"strings"
	"unicode"

	"github.com/extremevalue/research-kit/pkg/record"
)

// Fingerprint is the structural shape of a Definition used for
// similarity comparison: one normalized token set per declarative
// facet (spec §4.3: "universe + entry + exit + sizing"). Sets, not
// sequences, so P6's "stability under reordering of unordered sets"
// holds by construction.
type Fingerprint struct {
	Universe tokenSet
	Entry    tokenSet
	Exit     tokenSet
	Sizing   tokenSet
}

type tokenSet map[string]bool

// NewFingerprint extracts the structural fingerprint of a strategy
// Definition.
func NewFingerprint(d record.Definition) Fingerprint {
	return Fingerprint{
		Universe: tokenize(d.Universe),
		Entry:    tokenize(d.Entry),
		Exit:     tokenize(d.Exit),
		Sizing:   tokenize(d.Position),
	}
}

// tokenize lowercases and splits on any non-alphanumeric rune, folding
// the result into a set so word order and whitespace/punctuation
// differences never affect the fingerprint.
func tokenize(s string) tokenSet {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(tokenSet, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// jaccard computes |intersection| / |union| of two token sets, defined
// as 1 (identical, including both empty) when the union is empty.
func jaccard(a, b tokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

// Component weights resolved in DESIGN.md's "similarity metric weights"
// open question: universe and entry carry equal, largest weight since
// they most determine whether two strategies exploit the same edge;
// exit somewhat less; sizing least, since position sizing is the facet
// most often varied between otherwise-identical strategies (a "variant"
// per spec §4.3, not a different strategy).
const (
	weightUniverse = 0.30
	weightEntry    = 0.30
	weightExit     = 0.25
	weightSizing   = 0.15
)

// Similarity computes the weighted-Jaccard similarity of two
// fingerprints, in [0, 1]. 1 - Similarity is a proper metric over the
// fingerprint space: Jaccard distance is symmetric, zero only for
// identical sets, and satisfies the triangle inequality, and a convex
// combination of metrics with positive weights remains a metric — so
// the combined distance also satisfies the triangle inequality within
// spec §4.3's ε=0.05 tolerance.
func Similarity(a, b Fingerprint) float64 {
	return weightUniverse*jaccard(a.Universe, b.Universe) +
		weightEntry*jaccard(a.Entry, b.Entry) +
		weightExit*jaccard(a.Exit, b.Exit) +
		weightSizing*jaccard(a.Sizing, b.Sizing)
}
