// Package mathx supplies the small set of numerical primitives the
// statistical validator (C9) and regime tagger (C8) need: mean/stddev,
// percentiles, bootstrap confidence intervals, and multiple-testing
// corrections. None of the pack's dependencies offer these, and the
// surface is small enough that hand-rolling it (stdlib math/rand only)
// is the idiomatic choice rather than a new dependency (see DESIGN.md).
package mathx

import (
	"math"
	"math/rand"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation of xs (n-1 denominator).
// Returns 0 for fewer than two observations.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// Percentile returns the value at p (0-100) in xs using linear
// interpolation between closest ranks. xs is not mutated.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// BootstrapCI computes a two-sided confidence interval for the mean of
// xs via ordinary (with-replacement) bootstrap resampling. confidence
// is e.g. 0.95; resamples must be >= 1000 per spec §4.10. rng lets
// callers inject a seeded source for reproducible tests; a nil rng
// uses a fresh source seeded with 1.
func BootstrapCI(xs []float64, resamples int, confidence float64, rng *rand.Rand) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	means := make([]float64, resamples)
	n := len(xs)
	sample := make([]float64, n)
	for i := 0; i < resamples; i++ {
		for j := 0; j < n; j++ {
			sample[j] = xs[rng.Intn(n)]
		}
		means[i] = Mean(sample)
	}
	alpha := (1 - confidence) / 2 * 100
	return Percentile(means, alpha), Percentile(means, 100-alpha)
}

// ZeroSkillPValue returns the one-sided bootstrap p-value for the null
// hypothesis that the true mean Sharpe is <= 0, estimated as the
// fraction of bootstrap resample means that are <= 0.
func ZeroSkillPValue(xs []float64, resamples int, rng *rand.Rand) float64 {
	if len(xs) == 0 {
		return 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	n := len(xs)
	sample := make([]float64, n)
	belowOrEqualZero := 0
	for i := 0; i < resamples; i++ {
		for j := 0; j < n; j++ {
			sample[j] = xs[rng.Intn(n)]
		}
		if Mean(sample) <= 0 {
			belowOrEqualZero++
		}
	}
	return float64(belowOrEqualZero) / float64(resamples)
}

// Consistency returns the fraction of xs strictly greater than zero.
func Consistency(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	positive := 0
	for _, x := range xs {
		if x > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(xs))
}

// PercentChange returns (b-a)/|a| as a fraction, or 0 if a is 0.
func PercentChange(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / math.Abs(a)
}
