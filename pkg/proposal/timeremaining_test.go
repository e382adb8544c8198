package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRemaining(t *testing.T) {
	deferredAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ttl := 30 * 24 * time.Hour

	cases := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"just deferred", deferredAt, ttl},
		{"halfway through TTL", deferredAt.Add(15 * 24 * time.Hour), 15 * 24 * time.Hour},
		{"exactly at deadline", deferredAt.Add(ttl), 0},
		{"past deadline clamps to zero", deferredAt.Add(ttl + 24*time.Hour), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeRemaining(deferredAt, ttl, tc.now))
		})
	}
}
