package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/shield/circuit"
)

// Instruments holds OpenTelemetry metric instruments for shield
// primitives.
type Instruments struct {
	stateChanges     metric.Int64Counter
	admissionsDenied metric.Int64Counter
	retryAttempts    metric.Int64Counter
	bulkheadRejected metric.Int64Counter
}

// NewInstruments creates metric instruments on the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	stateChanges, err := meter.Int64Counter("shield.circuit.state_changes",
		metric.WithDescription("Total number of circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating state_changes counter: %w", err)
	}

	admissionsDenied, err := meter.Int64Counter("shield.circuit.admissions_denied",
		metric.WithDescription("Total number of calls denied by an open circuit"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating admissions_denied counter: %w", err)
	}

	retryAttempts, err := meter.Int64Counter("shield.retry.attempts",
		metric.WithDescription("Total number of retried attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry attempts counter: %w", err)
	}

	bulkheadRejected, err := meter.Int64Counter("shield.bulkhead.rejected",
		metric.WithDescription("Total number of calls rejected by a bulkhead"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bulkhead rejected counter: %w", err)
	}

	return &Instruments{
		stateChanges:     stateChanges,
		admissionsDenied: admissionsDenied,
		retryAttempts:    retryAttempts,
		bulkheadRejected: bulkheadRejected,
	}, nil
}

// RecordStateChange counts a breaker transition.
func (i *Instruments) RecordStateChange(ctx context.Context, name string, from, to circuit.State) {
	i.stateChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", name),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
}

// RecordAdmissionDenied counts a call denied by an open circuit.
func (i *Instruments) RecordAdmissionDenied(ctx context.Context, name string) {
	i.admissionsDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", name),
	))
}

// RecordRetry counts a retried attempt.
func (i *Instruments) RecordRetry(ctx context.Context, attempt int, delay time.Duration) {
	i.retryAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("attempt", attempt),
	))
}

// RecordBulkheadRejection counts a call rejected by a bulkhead.
func (i *Instruments) RecordBulkheadRejection(ctx context.Context, name string) {
	i.bulkheadRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bulkhead", name),
	))
}

// StateChangeHook adapts the instruments to a breaker's OnStateChange
// callback.
func (i *Instruments) StateChangeHook() func(name string, from, to circuit.State) {
	return func(name string, from, to circuit.State) {
		i.RecordStateChange(context.Background(), name, from, to)
	}
}

// RetryHook adapts the instruments to a retry policy's OnRetry observer.
func (i *Instruments) RetryHook() func(err error, attempt int, delay time.Duration) {
	return func(err error, attempt int, delay time.Duration) {
		i.RecordRetry(context.Background(), attempt, delay)
	}
}
