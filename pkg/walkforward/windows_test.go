package walkforward

import (
	"testing"
	"time"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceWindowsDefaultsStepToWindowSpanForNonOverlap(t *testing.T) {
	referenceEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := config.WalkForward{WindowCount: 4, WindowSpan: 90 * 24 * time.Hour}

	windows := SliceWindows(referenceEnd, cfg)
	require.Len(t, windows, 4)

	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start, "windows must be contiguous and non-overlapping by default")
	}
	assert.Equal(t, referenceEnd, windows[len(windows)-1].End)
}

func TestSliceWindowsOrdersOldestFirst(t *testing.T) {
	referenceEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := config.WalkForward{WindowCount: 3, WindowSpan: 30 * 24 * time.Hour}

	windows := SliceWindows(referenceEnd, cfg)
	for i, w := range windows {
		assert.Equal(t, i, w.Index)
	}
	assert.True(t, windows[0].Start.Before(windows[1].Start))
	assert.True(t, windows[1].Start.Before(windows[2].Start))
}

func TestSliceWindowsRespectsExplicitStepForOverlap(t *testing.T) {
	referenceEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := config.WalkForward{WindowCount: 3, WindowSpan: 90 * 24 * time.Hour, Step: 30 * 24 * time.Hour}

	windows := SliceWindows(referenceEnd, cfg)
	require.Len(t, windows, 3)
	assert.True(t, windows[0].End.After(windows[1].Start), "smaller step than span should overlap")
}

func TestSliceWindowsDefaultTwelveByThreeYears(t *testing.T) {
	referenceEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := config.Default().WalkForward

	windows := SliceWindows(referenceEnd, cfg)
	require.Len(t, windows, 12)
	assert.Equal(t, referenceEnd, windows[11].End)
}
