package events

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name    string
		policy  RetryPolicy
		attempt int
		want    time.Duration
	}{
		{
			name:    "fixed_backoff_first_retry",
			policy:  RetryPolicy{MaxAttempts: 3, Backoff: 100 * time.Millisecond},
			attempt: 1,
			want:    100 * time.Millisecond,
		},
		{
			name:    "fixed_backoff_stays_flat",
			policy:  RetryPolicy{MaxAttempts: 5, Backoff: 100 * time.Millisecond},
			attempt: 4,
			want:    100 * time.Millisecond,
		},
		{
			name:    "exponential_first_retry",
			policy:  RetryPolicy{MaxAttempts: 3, Backoff: 100 * time.Millisecond, Exponential: true},
			attempt: 1,
			want:    100 * time.Millisecond,
		},
		{
			name:    "exponential_second_retry",
			policy:  RetryPolicy{MaxAttempts: 3, Backoff: 100 * time.Millisecond, Exponential: true},
			attempt: 2,
			want:    200 * time.Millisecond,
		},
		{
			name:    "exponential_fourth_retry",
			policy:  RetryPolicy{MaxAttempts: 5, Backoff: 100 * time.Millisecond, Exponential: true},
			attempt: 4,
			want:    800 * time.Millisecond,
		},
		{
			name: "exponential_capped_by_max_delay",
			policy: RetryPolicy{
				MaxAttempts: 10,
				Backoff:     time.Second,
				Exponential: true,
				MaxDelay:    4 * time.Second,
			},
			attempt: 8,
			want:    4 * time.Second,
		},
		{
			name: "fixed_capped_by_max_delay",
			policy: RetryPolicy{
				MaxAttempts: 3,
				Backoff:     10 * time.Second,
				MaxDelay:    time.Second,
			},
			attempt: 1,
			want:    time.Second,
		},
		{
			name:    "zero_backoff",
			policy:  RetryPolicy{MaxAttempts: 3, Exponential: true},
			attempt: 3,
			want:    0,
		},
		{
			// Uncapped doubling must saturate, never wrap negative
			// and turn the remaining backoffs into hot spins.
			name:    "uncapped_exponential_saturates",
			policy:  RetryPolicy{MaxAttempts: 100, Backoff: time.Second, Exponential: true},
			attempt: 80,
			want:    time.Duration(math.MaxInt64),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDelay(tt.policy, tt.attempt))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: 100 * time.Millisecond}

	tests := []struct {
		name    string
		attempt int
		outcome Outcome
		want    bool
	}{
		{"failure_with_attempts_left", 1, OutcomeFailure, true},
		{"timeout_with_attempts_left", 2, OutcomeTimeout, true},
		{"failure_on_final_attempt", 3, OutcomeFailure, false},
		{"success_never_retries", 1, OutcomeSuccess, false},
		{"success_on_final_attempt", 3, OutcomeSuccess, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(policy, tt.attempt, tt.outcome))
		})
	}

	t.Run("single_attempt_policy_never_retries", func(t *testing.T) {
		assert.False(t, ShouldRetry(RetryPolicy{MaxAttempts: 1}, 1, OutcomeFailure))
	})
}
