package worker

import "time"

// RetryPolicy spaces out redelivery of failed outbox rows. The delay doubles
// per attempt from Initial and never exceeds Cap.
type RetryPolicy struct {
	MaxRetries int
	Initial    time.Duration
	Cap        time.Duration
}

// deliveryRetryPolicy is the schedule for notification delivery: five
// attempts, one second growing to a one-minute ceiling.
func deliveryRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 5,
		Initial:    time.Second,
		Cap:        time.Minute,
	}
}

// NextDelay returns how long to wait before redelivering after `attempt`
// failed tries (1-based).
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	delay := p.Initial
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.Cap > 0 && delay >= p.Cap {
			return p.Cap
		}
	}
	return delay
}
