package check

import (
	"math/rand"
	"time"
)

const maxBackoff = 5 * time.Second

// backoffDelay returns the wait before retry number attempt (1-based):
// base doubled per attempt, capped, with up to 25% jitter so concurrent
// retriers spread out.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	delay := base << (attempt - 1)
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
