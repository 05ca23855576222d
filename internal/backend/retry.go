package backend

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryPolicy governs durable calls. Only timeout-class failures are retried.
type RetryPolicy struct {
	// MaxAttempts caps total attempts; zero means unbounded.
	MaxAttempts int
	Delay       time.Duration
	// Multiplier scales the delay after each retry; 1 keeps it fixed.
	Multiplier float64
	// MaxDelay caps the scaled delay; zero means no cap.
	MaxDelay time.Duration
}

// DefaultRetryPolicy retries forever with a fixed one second pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 0, Delay: time.Second, Multiplier: 1}
}

// Unbounded reports whether the policy never gives up on timeouts.
func (p RetryPolicy) Unbounded() bool { return p.MaxAttempts <= 0 }

// backoff returns the pause before attempt n+1, for n >= 1.
func (p RetryPolicy) backoff(n int) time.Duration {
	d := p.Delay
	if p.Multiplier > 1 {
		for i := 1; i < n; i++ {
			d = time.Duration(float64(d) * p.Multiplier)
			if p.MaxDelay > 0 && d >= p.MaxDelay {
				return p.MaxDelay
			}
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// IsTimeout reports whether err is a timeout-class failure worth retrying.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
