// Package retry runs an operation repeatedly until it succeeds, the
// attempt budget is exhausted, or the error is ruled out by the policy's
// selection rule.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/shield/backoff"
	"github.com/kbukum/shield/logger"
)

// DefaultMaxAttempts is the attempt budget used when a policy does not set one.
const DefaultMaxAttempts = 3

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int
	// Backoff computes the wait between attempts. Defaults to exponential
	// backoff starting at 100ms, doubling, capped at 60s.
	Backoff backoff.Strategy
	// RetryIf decides whether an error should be retried. When set it
	// takes precedence over RetryOn.
	RetryIf func(err error, attempt int) bool
	// RetryOn restricts retries to errors matching (via errors.Is) one of
	// the listed targets. Ignored when RetryIf is set. Empty means retry
	// on all errors.
	RetryOn []error
	// OnRetry is called once per completed retry, after the failed attempt
	// and before the backoff sleep.
	OnRetry func(err error, attempt int, delay time.Duration)
	// Logger, when set, logs each retry at debug level.
	Logger *logger.Logger
}

// DefaultPolicy returns a policy with 3 attempts and the default backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     backoff.Default(),
	}
}

// WithMaxAttempts sets the attempt budget and returns the policy.
func (p Policy) WithMaxAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// WithBackoff sets the backoff strategy and returns the policy.
func (p Policy) WithBackoff(s backoff.Strategy) Policy {
	p.Backoff = s
	return p
}

// WithRetryOn restricts retries to the given error targets and returns
// the policy.
func (p Policy) WithRetryOn(targets ...error) Policy {
	p.RetryOn = targets
	return p
}

// WithRetryIf sets the retry predicate and returns the policy.
func (p Policy) WithRetryIf(fn func(err error, attempt int) bool) Policy {
	p.RetryIf = fn
	return p
}

// WithOnRetry sets the retry observer and returns the policy.
func (p Policy) WithOnRetry(fn func(err error, attempt int, delay time.Duration)) Policy {
	p.OnRetry = fn
	return p
}

// shouldRetry applies the selection rule. A predicate takes precedence
// over the target list; with neither configured every error is retried.
func (p Policy) shouldRetry(err error, attempt int) bool {
	if p.RetryIf != nil {
		return p.RetryIf(err, attempt)
	}
	if len(p.RetryOn) > 0 {
		for _, target := range p.RetryOn {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
	return true
}

// Run executes fn with retry logic. It returns fn's value on the first
// success, or the last observed error once the selection rule rejects an
// error or the attempt budget is exhausted. That failure is always the
// operation's own error, never a synthesized one. When ctx is done before
// an attempt or during the backoff sleep, Run returns ctx.Err() instead.
func Run[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T

	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Backoff == nil {
		p.Backoff = backoff.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.shouldRetry(err, attempt) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Backoff.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(err, attempt, delay)
		}
		if p.Logger != nil {
			p.Logger.Debug("retrying after failed attempt", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldDelay, delay.String(),
				logger.FieldError, err.Error(),
			))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// RunFunc executes a function that returns only an error.
func RunFunc(ctx context.Context, p Policy, fn func() error) error {
	_, err := Run(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
