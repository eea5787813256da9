package saga

import (
	"time"
)

// RetryPolicy controls how a subscriber treats a failing message before
// giving up and routing it to the dead-letter topic. The current business
// rules rarely exercise it, but the policy is an explicit configuration
// point rather than an implicit default.
type RetryPolicy struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
}

// DefaultRetryPolicy returns the policy used when config leaves it unset
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      5,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      30 * time.Second,
		DeadLetterTopic: "saga-dead-letter",
	}
}

// BackoffFor returns the delay before the given retry attempt, doubling
// from InitialBackoff and capped at MaxBackoff.
func (p RetryPolicy) BackoffFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	backoff := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}

	if backoff > p.MaxBackoff {
		return p.MaxBackoff
	}
	return backoff
}
