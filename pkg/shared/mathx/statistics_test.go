package mathx

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, Mean(xs), 1e-9)
	assert.InDelta(t, 1.5811388300841898, StdDev(xs), 1e-9)
}

func TestMeanEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev([]float64{1}))
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 20, 30, 40}
	assert.InDelta(t, 10.0, Percentile(xs, 0), 1e-9)
	assert.InDelta(t, 40.0, Percentile(xs, 100), 1e-9)
	assert.InDelta(t, 25.0, Percentile(xs, 50), 1e-9)
}

func TestBootstrapCIBracketsTheMeanForLargeSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = 1.0 // constant series: CI should collapse around 1.0
	}
	lo, hi := BootstrapCI(xs, 1000, 0.95, rng)
	assert.InDelta(t, 1.0, lo, 1e-9)
	assert.InDelta(t, 1.0, hi, 1e-9)
}

func TestZeroSkillPValueForClearlyPositiveSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xs := []float64{1, 1, 1, 1, 1}
	p := ZeroSkillPValue(xs, 1000, rng)
	assert.Equal(t, 0.0, p)
}

func TestZeroSkillPValueForClearlyNegativeSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xs := []float64{-1, -1, -1, -1, -1}
	p := ZeroSkillPValue(xs, 1000, rng)
	assert.Equal(t, 1.0, p)
}

func TestConsistency(t *testing.T) {
	xs := []float64{1, -1, 2, -2, 3}
	assert.InDelta(t, 0.6, Consistency(xs), 1e-9)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 0.1, PercentChange(100, 110), 1e-9)
	assert.Equal(t, 0.0, PercentChange(0, 110))
}
