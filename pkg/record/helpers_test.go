package record

import "time"

// fixedTime returns a deterministic timestamp for hash-stability assertions.
func fixedTime() time.Time {
	return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}
