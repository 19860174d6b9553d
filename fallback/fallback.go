// Package fallback provides value-producing policies consulted when a
// primary operation fails or is short-circuited.
package fallback

import (
	"fmt"

	apperrors "github.com/kbukum/shield/errors"
)

// Kind identifies the fallback variant.
type Kind int

const (
	// KindNone is the zero value: no fallback configured.
	KindNone Kind = iota
	// KindDefault yields the zero value of the requested type.
	KindDefault
	// KindValue yields a stored value when its type matches.
	KindValue
	// KindCallable invokes a function and yields its result.
	KindCallable
	// KindThrow raises a FallbackRaised error.
	KindThrow
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDefault:
		return "default"
	case KindValue:
		return "value"
	case KindCallable:
		return "callable"
	case KindThrow:
		return "throw"
	default:
		return "unknown"
	}
}

// Policy describes how to produce a substitute result. The zero value is
// an unconfigured policy that never produces anything.
type Policy struct {
	kind  Kind
	value any
	fn    func() (any, error)
}

// Kind returns the policy's variant.
func (p Policy) Kind() Kind { return p.kind }

// IsZero reports whether no fallback is configured.
func (p Policy) IsZero() bool { return p.kind == KindNone }

// Default returns a policy yielding the zero value of the requested type.
func Default() Policy {
	return Policy{kind: KindDefault}
}

// Value returns a policy yielding the stored value. The value must not
// be nil.
func Value(v any) (Policy, error) {
	if v == nil {
		return Policy{}, apperrors.InvalidConfiguration("a value must be provided for a value fallback")
	}
	return Policy{kind: KindValue, value: v}, nil
}

// Callable returns a policy that invokes fn and yields its result. The
// function must not be nil.
func Callable(fn func() (any, error)) (Policy, error) {
	if fn == nil {
		return Policy{}, apperrors.InvalidConfiguration("a function must be provided for a callable fallback")
	}
	return Policy{kind: KindCallable, fn: fn}, nil
}

// Throw returns a policy that raises FallbackRaised instead of producing
// a value.
func Throw() Policy {
	return Policy{kind: KindThrow}
}

// Produce attempts to yield a value of type T from the policy.
//
// It returns the value, or an UNABLE_TO_PRODUCE_VALUE error when no value
// is available (unconfigured policy, stored value of the wrong type, or a
// callable that failed or returned the wrong type), or FALLBACK_RAISED
// for the Throw variant.
func Produce[T any](p Policy) (T, error) {
	var zero T

	switch p.kind {
	case KindDefault:
		return zero, nil
	case KindValue:
		if v, ok := p.value.(T); ok {
			return v, nil
		}
		return zero, apperrors.UnableToProduceValue(
			fmt.Sprintf("stored value of type %T does not match the requested type %T", p.value, zero))
	case KindCallable:
		result, err := p.fn()
		if err != nil {
			return zero, apperrors.UnableToProduceValue("fallback callable failed").WithCause(err)
		}
		if v, ok := result.(T); ok {
			return v, nil
		}
		return zero, apperrors.UnableToProduceValue(
			fmt.Sprintf("callable result of type %T does not match the requested type %T", result, zero))
	case KindThrow:
		return zero, apperrors.FallbackRaised()
	default:
		return zero, apperrors.UnableToProduceValue("no fallback policy configured")
	}
}

// ProduceOr returns the produced value, or def when the policy cannot
// produce one. A Throw policy still raises: the error return is non-nil
// only for FALLBACK_RAISED.
func ProduceOr[T any](p Policy, def T) (T, error) {
	v, err := Produce[T](p)
	if err == nil {
		return v, nil
	}
	if apperrors.IsCode(err, apperrors.ErrCodeFallbackRaised) {
		return def, err
	}
	return def, nil
}
