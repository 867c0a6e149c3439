package executor

import (
	"math/rand"
	"time"
)

// Exponential backoff with full jitter (AWS architecture blog's
// "full jitter" formula): sleep = random_between(0, min(cap, base*2^attempt)).
const (
	defaultBackoffBase = 250 * time.Millisecond
	defaultBackoffCap  = 4 * time.Second
)

func backoffDelay(attempt int, base, ceiling time.Duration) time.Duration {
	if base <= 0 {
		base = defaultBackoffBase
	}
	if ceiling <= 0 {
		ceiling = defaultBackoffCap
	}

	upper := base << attempt // 2^attempt, may overflow for large attempt
	if upper <= 0 || upper > ceiling {
		upper = ceiling
	}
	return time.Duration(rand.Int63n(int64(upper) + 1))
}
