package resilience

import (
	"math/rand/v2"
	"time"
)

// Backoff returns an exponential backoff for attempt (1-based), capped at
// limit when limit is positive. Jitter is a fraction, 0.2 == ±20%.
func Backoff(base time.Duration, attempt int, jitterPct float64, limit time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if limit > 0 && (d > limit || d <= 0) {
		d = limit
	}
	if jitterPct <= 0 {
		return d
	}
	jitter := float64(d) * jitterPct
	delta := (rand.Float64()*2 - 1) * jitter
	return d + time.Duration(delta)
}
