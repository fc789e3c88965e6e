package playback

import (
	"time"

	"github.com/scrubline/scrubline/key"
	"github.com/spf13/viper"
)

// RetryPolicy bounds automatic restarts after fatal network errors.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// StableAfter is how much uninterrupted media progress restores the budget.
	StableAfter time.Duration
}

// DefaultRetryPolicy is three attempts, 1s doubling up to 8s, reset after 10s of playback.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
		StableAfter: 10 * time.Second,
	}
}

// RetryPolicyFromConfig reads the policy from the stream.retry.* keys.
func RetryPolicyFromConfig() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: viper.GetInt(key.StreamRetryMaxAttempts),
		BaseDelay:   time.Duration(viper.GetInt(key.StreamRetryBaseDelay)) * time.Millisecond,
		MaxDelay:    time.Duration(viper.GetInt(key.StreamRetryMaxDelay)) * time.Millisecond,
		StableAfter: time.Duration(viper.GetInt(key.StreamRetryStableAfter)) * time.Second,
	}
}

// Delay returns the backoff before the given 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
