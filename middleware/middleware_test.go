package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/shield/bulkhead"
	"github.com/kbukum/shield/circuit"
)

func TestHandlerPassesThroughOnSuccess(t *testing.T) {
	reg := circuit.NewRegistry()
	reg.Create(circuit.Config{Name: "ok", FailureThreshold: 3, OpenDuration: time.Minute})

	h := Handler("ok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), WithRegistry(reg))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if reg.Get("ok").Failures() != 0 {
		t.Errorf("expected 0 failures, got %d", reg.Get("ok").Failures())
	}
}

func TestHandlerCountsServerErrors(t *testing.T) {
	reg := circuit.NewRegistry()
	reg.Create(circuit.Config{Name: "flaky", FailureThreshold: 2, OpenDuration: time.Minute})

	h := Handler("flaky", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), WithRegistry(reg))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}

	if reg.Get("flaky").State() != circuit.StateOpen {
		t.Errorf("expected open circuit after repeated 502s, got %s", reg.Get("flaky").State())
	}
}

func TestHandlerShortCircuitsWhenOpen(t *testing.T) {
	reg := circuit.NewRegistry()
	b := reg.Create(circuit.Config{Name: "down", FailureThreshold: 1, OpenDuration: time.Minute})
	b.ReportFailure()

	handlerCalls := int32(0)
	h := Handler("down", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&handlerCalls, 1)
	}), WithRegistry(reg))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if atomic.LoadInt32(&handlerCalls) != 0 {
		t.Error("handler must not run while the circuit is open")
	}
}

func TestHandlerClientErrorsAreNotFailures(t *testing.T) {
	reg := circuit.NewRegistry()
	reg.Create(circuit.Config{Name: "client", FailureThreshold: 1, OpenDuration: time.Minute})

	h := Handler("client", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), WithRegistry(reg))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if reg.Get("client").State() != circuit.StateClosed {
		t.Error("4xx responses must not trip the circuit")
	}
}

func TestHandlerCustomFailureStatus(t *testing.T) {
	reg := circuit.NewRegistry()
	reg.Create(circuit.Config{Name: "strict", FailureThreshold: 1, OpenDuration: time.Minute})

	h := Handler("strict", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}), WithRegistry(reg), WithFailureStatus(http.StatusTooManyRequests))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if reg.Get("strict").State() != circuit.StateOpen {
		t.Error("expected 429 to count as a failure with a lowered threshold")
	}
}

func TestHandlerImplicitOKStatus(t *testing.T) {
	reg := circuit.NewRegistry()
	reg.Create(circuit.Config{Name: "implicit", FailureThreshold: 1, OpenDuration: time.Minute})

	h := Handler("implicit", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok")) // no explicit WriteHeader
	}), WithRegistry(reg))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if reg.Get("implicit").State() != circuit.StateClosed {
		t.Error("implicit 200 must count as success")
	}
}

func TestHandlerWithBulkhead(t *testing.T) {
	reg := circuit.NewRegistry()
	reg.Create(circuit.Config{Name: "pooled", FailureThreshold: 5, OpenDuration: time.Minute})
	bh := bulkhead.New(bulkhead.Config{Name: "pool", MaxConcurrent: 1})

	block := make(chan struct{})
	started := make(chan struct{})
	h := Handler("pooled", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-block
	}), WithRegistry(reg), WithBulkhead(bh))

	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	<-started
	defer close(block)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 from a full bulkhead, got %d", rec.Code)
	}
}
