// Package timeout bounds how long a caller waits for an operation. The
// operation runs on its own goroutine and races a timer; an elapsed
// deadline abandons the worker without cancelling it.
package timeout

import (
	"context"
	"time"

	apperrors "github.com/kbukum/shield/errors"
)

// DefaultTimeout is used when a policy does not set one.
const DefaultTimeout = time.Second

// Policy carries the deadline for an operation. Compositions store it
// opaquely; only this package interprets it.
type Policy struct {
	Timeout time.Duration
}

// DefaultPolicy returns a policy with a 1s deadline.
func DefaultPolicy() Policy {
	return Policy{Timeout: DefaultTimeout}
}

type result[T any] struct {
	value T
	err   error
}

// Do runs fn on a worker goroutine and waits for it, the policy deadline,
// or ctx, whichever finishes first. An elapsed deadline returns a TIMEOUT
// error; the worker keeps running and its result is discarded.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T

	d := p.Timeout
	if d <= 0 {
		d = DefaultTimeout
	}

	// Buffered so the abandoned worker can always deliver and exit.
	ch := make(chan result[T], 1)
	go func() {
		value, err := fn()
		ch <- result[T]{value: value, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-timer.C:
		return zero, apperrors.Timeout(d)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// DoFunc runs a function that returns only an error.
func DoFunc(ctx context.Context, p Policy, fn func() error) error {
	_, err := Do(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
