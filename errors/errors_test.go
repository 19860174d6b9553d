package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestOpenCircuitFields(t *testing.T) {
	err := OpenCircuit("svc")
	if err.Code != ErrCodeOpenCircuit {
		t.Errorf("expected code %s, got %s", ErrCodeOpenCircuit, err.Code)
	}
	if err.Details["breaker"] != "svc" {
		t.Errorf("expected breaker detail 'svc', got %v", err.Details["breaker"])
	}
	if err.HTTPStatus != 503 {
		t.Errorf("expected 503, got %d", err.HTTPStatus)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := UnableToProduceValue("no value").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestAppErrorIsMatchesByCode(t *testing.T) {
	a := OpenCircuit("a")
	b := OpenCircuit("b")

	if !errors.Is(a, b) {
		t.Error("two OPEN_CIRCUIT errors should match via errors.Is")
	}
	if errors.Is(a, FallbackRaised()) {
		t.Error("OPEN_CIRCUIT should not match FALLBACK_RAISED")
	}
}

func TestAppErrorIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", Timeout(time.Second))

	if !IsCode(wrapped, ErrCodeTimeout) {
		t.Error("expected IsCode to see through fmt.Errorf wrapping")
	}
	if CodeOf(wrapped) != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", CodeOf(wrapped))
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"open circuit", OpenCircuit("svc"), true},
		{"timeout", Timeout(time.Second), true},
		{"bulkhead full", BulkheadFull("pool"), true},
		{"fallback raised", FallbackRaised(), false},
		{"invalid configuration", InvalidConfiguration("bad"), false},
		{"untyped", errors.New("boom"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if CodeOf(errors.New("plain")) != "" {
		t.Error("expected empty code for a non-AppError")
	}
}

func TestWithDetail(t *testing.T) {
	err := InvalidConfiguration("missing payload").WithDetail("field", "value")
	if err.Details["field"] != "value" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}
