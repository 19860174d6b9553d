// Package middleware guards HTTP handlers with shield primitives: a
// named circuit breaker shared through the registry, and optionally a
// bulkhead. Server errors count as failures; an open circuit short-
// circuits requests with 503 before the handler runs.
package middleware

import (
	"net/http"

	"github.com/kbukum/shield/bulkhead"
	"github.com/kbukum/shield/circuit"
	apperrors "github.com/kbukum/shield/errors"
)

// options configures the middleware.
type options struct {
	registry      *circuit.Registry
	bulkhead      *bulkhead.Bulkhead
	failureStatus int
}

// Option customizes the middleware.
type Option func(*options)

// WithRegistry uses a registry other than the process-wide one.
func WithRegistry(r *circuit.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithBulkhead also bounds concurrent requests through the handler.
func WithBulkhead(b *bulkhead.Bulkhead) Option {
	return func(o *options) { o.bulkhead = b }
}

// WithFailureStatus sets the lowest response status counted as a failure.
// Defaults to 500.
func WithFailureStatus(status int) Option {
	return func(o *options) { o.failureStatus = status }
}

func buildOptions(opts []Option) options {
	o := options{
		registry:      circuit.DefaultRegistry(),
		failureStatus: http.StatusInternalServerError,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// statusRecorder captures the response status for failure accounting.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Handler wraps next with a named circuit breaker.
func Handler(name string, next http.Handler, opts ...Option) http.Handler {
	o := buildOptions(opts)
	breaker := o.registry.Get(name)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !breaker.Admit() {
			writeUnavailable(w, apperrors.OpenCircuit(name))
			return
		}

		serve := func() error {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			if rec.status >= o.failureStatus {
				breaker.ReportFailure()
			} else {
				breaker.ReportSuccess()
			}
			return nil
		}

		if o.bulkhead != nil {
			if err := o.bulkhead.Do(req.Context(), serve); err != nil {
				writeUnavailable(w, err)
			}
			return
		}
		_ = serve()
	})
}

func writeUnavailable(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	if appErr, ok := err.(*apperrors.AppError); ok && appErr.HTTPStatus != 0 {
		status = appErr.HTTPStatus
	}
	http.Error(w, err.Error(), status)
}
