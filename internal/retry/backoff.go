// Package retry holds delay policies for re-attempting transient failures.
package retry

import "time"

// Doublings beyond this would overflow time.Duration long before any
// realistic retry budget runs out.
const maxDoublings = 16

// ExponentialBackoff returns the pause before retry number attempt: base
// doubled attempt times, so attempt 0 waits base. Negative attempts wait
// base and the doubling is capped at maxDoublings.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxDoublings {
		attempt = maxDoublings
	}
	return base << attempt
}
