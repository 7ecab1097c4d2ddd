package events

import (
	"math"
	"time"
)

// NextDelay computes the backoff before the attempt following attemptNumber.
// Attempt numbering starts at 1, so after the first failed attempt the delay
// is Backoff, after the second it is Backoff*2 (exponential) or Backoff
// (fixed), and so on. MaxDelay, when set, caps the result; without a cap the
// doubling saturates at the maximum Duration instead of overflowing negative.
func NextDelay(p RetryPolicy, attemptNumber int) time.Duration {
	delay := p.Backoff
	if p.Exponential {
		for i := 1; i < attemptNumber; i++ {
			if delay > math.MaxInt64/2 {
				delay = math.MaxInt64
				break
			}
			delay *= 2
			if p.MaxDelay > 0 && delay >= p.MaxDelay {
				return p.MaxDelay
			}
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether a further attempt should be made after
// attemptNumber finished with the given outcome. Success never retries;
// failures and timeouts retry while attempts remain.
func ShouldRetry(p RetryPolicy, attemptNumber int, outcome Outcome) bool {
	if outcome != OutcomeFailure && outcome != OutcomeTimeout {
		return false
	}
	return attemptNumber < p.MaxAttempts
}
