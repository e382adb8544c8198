package proposal

import "time"

// TimeRemaining reports how long a deferred proposal has left before
// TTL prune, clamped to zero once the deadline has passed.
func TimeRemaining(deferredAt time.Time, ttl time.Duration, now time.Time) time.Duration {
	remaining := deferredAt.Add(ttl).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
