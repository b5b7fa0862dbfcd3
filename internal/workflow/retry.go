package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/pforge-labs/pforge/internal/model"
)

// Strategy selects how the retry delay grows between attempts.
type Strategy string

const (
	StrategyFixed       Strategy = "fixed"
	StrategyExponential Strategy = "exponential"
)

// Policy is the retry configuration for external calls. It is
// configuration, not hard-coded behavior.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Strategy    Strategy
	// CallTimeout bounds each external call independently; a timeout is
	// treated identically to a transient failure.
	CallTimeout time.Duration
}

// DefaultPolicy is used when configuration supplies nothing.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     200 * time.Millisecond,
		Strategy:    StrategyFixed,
		CallTimeout: 30 * time.Second,
	}
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Strategy == StrategyExponential {
		return p.Backoff << attempt
	}
	return p.Backoff
}

// transient reports whether an error warrants a retry: a collaborator
// error flagged transient, or a per-call timeout.
func transient(err error) bool {
	var callErr *model.ExternalCallError
	if errors.As(err, &callErr) {
		return callErr.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// call runs fn under the per-call timeout and the retry policy. Transient
// failures retry up to MaxAttempts with the configured backoff;
// non-transient failures return immediately.
func (p Policy) call(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		callCtx := ctx
		cancel := func() {}
		if p.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.CallTimeout)
		}
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !transient(err) {
			return err
		}
		if attempt < p.MaxAttempts-1 {
			select {
			case <-time.After(p.delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
