package circuit

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/shield/errors"
	"github.com/kbukum/shield/fallback"
	"github.com/kbukum/shield/logger"
	"github.com/kbukum/shield/retry"
	"github.com/kbukum/shield/timeout"
)

// Circuit composes retry, fallback, and breaker policies around a single
// call site. It is cheap to construct, configured with builder methods,
// and consumed by Run.
//
//	c := circuit.NewCircuit("billing").
//	    WithRetryPolicy(retry.DefaultPolicy()).
//	    WithFallbackPolicy(fb)
//	total, err := circuit.Run(ctx, c, fetchTotal)
type Circuit struct {
	breaker  *Breaker
	retry    *retry.Policy
	timeout  *timeout.Policy
	fallback fallback.Policy
	handled  func(error) bool
	log      *logger.Logger
	id       string
}

// NewCircuit creates a composition around the named breaker from the
// process-wide registry, creating the breaker with default settings if it
// does not exist yet.
func NewCircuit(name string) *Circuit {
	return NewCircuitFromBreaker(Get(name))
}

// NewCircuitFromBreaker creates a composition around an existing breaker.
// The breaker is registered in the process-wide registry on first use, so
// name lookups and direct references observe the same instance.
func NewCircuitFromBreaker(b *Breaker) *Circuit {
	return &Circuit{
		breaker: Register(b),
		log:     logger.WithComponent("circuit"),
		id:      uuid.NewString(),
	}
}

// WithRetryPolicy attaches a retry policy and returns the circuit.
func (c *Circuit) WithRetryPolicy(p retry.Policy) *Circuit {
	c.retry = &p
	return c
}

// WithTimeoutPolicy attaches a timeout policy and returns the circuit.
// The composition stores the policy opaquely; callers pass it to the
// timeout package when wrapping their operation.
func (c *Circuit) WithTimeoutPolicy(p timeout.Policy) *Circuit {
	c.timeout = &p
	return c
}

// WithFallbackPolicy attaches a fallback policy and returns the circuit.
func (c *Circuit) WithFallbackPolicy(p fallback.Policy) *Circuit {
	c.fallback = p
	return c
}

// WithHandledErrors restricts which failures the breaker and fallback
// observe to errors matching (via errors.Is) one of the targets. Other
// errors pass through unchanged. Returns the circuit.
func (c *Circuit) WithHandledErrors(targets ...error) *Circuit {
	c.handled = func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
	return c
}

// WithHandledIf sets a predicate deciding which failures the breaker and
// fallback observe. Returns the circuit.
func (c *Circuit) WithHandledIf(fn func(error) bool) *Circuit {
	c.handled = fn
	return c
}

// WithLogger overrides the composition's logger and returns the circuit.
func (c *Circuit) WithLogger(l *logger.Logger) *Circuit {
	c.log = l
	return c
}

// Breaker returns the breaker this composition reports to.
func (c *Circuit) Breaker() *Breaker { return c.breaker }

// RetryPolicy returns the attached retry policy, or nil.
func (c *Circuit) RetryPolicy() *retry.Policy { return c.retry }

// TimeoutPolicy returns the attached timeout policy, or nil.
func (c *Circuit) TimeoutPolicy() *timeout.Policy { return c.timeout }

// FallbackPolicy returns the attached fallback policy; its zero value
// means none is configured.
func (c *Circuit) FallbackPolicy() fallback.Policy { return c.fallback }

// handles reports whether a failure counts toward the breaker and
// fallback. With no filter configured every error is handled.
func (c *Circuit) handles(err error) bool {
	if c.handled == nil {
		return true
	}
	return c.handled(err)
}

// Run executes op through the composition.
//
// With a retry policy attached, the admission/report protocol runs on
// every attempt, so an exhausted retry adds that many failures to the
// breaker. Per call: denied admission consults the fallback and otherwise
// fails with OPEN_CIRCUIT; a success is reported and returned; a handled
// failure is reported, then substituted by the fallback when it can
// produce a value, and otherwise returned as the zero value together with
// the original error; an unhandled failure passes through untouched.
func Run[T any](ctx context.Context, c *Circuit, op func() (T, error)) (T, error) {
	if c.retry != nil {
		return retry.Run(ctx, *c.retry, func() (T, error) {
			return runOnce(c, op)
		})
	}
	return runOnce(c, op)
}

// RunFunc executes an operation that returns only an error.
func RunFunc(ctx context.Context, c *Circuit, op func() error) error {
	_, err := Run(ctx, c, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// RunWith constructs a composition and runs op through it in one call.
// Nil policies are left unset.
func RunWith[T any](ctx context.Context, op func() (T, error), name string, retryPolicy *retry.Policy, timeoutPolicy *timeout.Policy, fallbackPolicy fallback.Policy) (T, error) {
	c := NewCircuit(name)
	if retryPolicy != nil {
		c = c.WithRetryPolicy(*retryPolicy)
	}
	if timeoutPolicy != nil {
		c = c.WithTimeoutPolicy(*timeoutPolicy)
	}
	if !fallbackPolicy.IsZero() {
		c = c.WithFallbackPolicy(fallbackPolicy)
	}
	return Run(ctx, c, op)
}

// runOnce performs a single pass of the execution protocol: admission,
// invocation, reporting, fallback.
func runOnce[T any](c *Circuit, op func() (T, error)) (T, error) {
	var zero T

	if !c.breaker.Admit() {
		c.log.Debug("admission denied", logger.Fields(
			logger.FieldBreaker, c.breaker.Name(),
			logger.FieldRunID, c.id,
		))
		if !c.fallback.IsZero() {
			v, err := fallback.Produce[T](c.fallback)
			if err == nil {
				return v, nil
			}
			if apperrors.IsCode(err, apperrors.ErrCodeFallbackRaised) {
				return zero, err
			}
		}
		return zero, apperrors.OpenCircuit(c.breaker.Name())
	}

	v, err := op()
	if err == nil {
		c.breaker.ReportSuccess()
		return v, nil
	}

	if !c.handles(err) {
		return zero, err
	}

	c.breaker.ReportFailure()

	if !c.fallback.IsZero() {
		fv, ferr := fallback.Produce[T](c.fallback)
		if ferr == nil {
			return fv, nil
		}
		if apperrors.IsCode(ferr, apperrors.ErrCodeFallbackRaised) {
			return zero, ferr
		}
		c.log.Debug("fallback produced no value", logger.Fields(
			logger.FieldBreaker, c.breaker.Name(),
			logger.FieldRunID, c.id,
			logger.FieldError, ferr.Error(),
		))
	}

	return zero, err
}
