package worker

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff doubles per attempt starting at 2s, capped at 5m, with a
// little jitter to avoid thundering herds.
// attempt=0 => 2s, attempt=1 => 4s, attempt=2 => 8s, ...
func ExponentialBackoff(attempt int) time.Duration {
	base := 2 * time.Second
	capDelay := 5 * time.Minute

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay {
		delay = capDelay
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
