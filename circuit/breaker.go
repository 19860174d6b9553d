// Package circuit provides a circuit breaker with time-based recovery, a
// process-wide registry that lets disjoint call sites share one breaker
// by name, and a composition that threads retry, fallback, and breaker
// policies around a single operation.
package circuit

import (
	"sync"
	"time"

	"github.com/kbukum/shield/logger"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows requests to pass through.
	StateClosed State = iota
	// StateOpen blocks all requests.
	StateOpen
	// StateHalfOpen is entered once the open duration elapses; requests are
	// admitted until the next report closes or reopens the circuit.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a circuit breaker.
type Config struct {
	// Name identifies this circuit breaker in the registry and in logs.
	Name string
	// FailureThreshold is the number of consecutive failures before the
	// circuit opens.
	FailureThreshold int
	// OpenDuration is how long the circuit stays open before a trial
	// request is admitted.
	OpenDuration time.Duration
	// OnStateChange is called after every state transition.
	OnStateChange func(name string, from, to State)
	// Logger overrides the default transition logger.
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults: threshold 5, open for 60s.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		OpenDuration:     60 * time.Second,
	}
}

// Breaker tracks consecutive failures for a named dependency and fails
// fast while it is unhealthy.
//
// States:
//   - Closed: normal operation, admission always granted
//   - Open: admission denied until OpenDuration elapses
//   - HalfOpen: admission granted; the next success closes, the next
//     failure reopens
type Breaker struct {
	config Config
	log    *logger.Logger

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

// NewBreaker creates a new circuit breaker.
func NewBreaker(config Config) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.OpenDuration < 0 {
		config.OpenDuration = 60 * time.Second
	}
	log := config.Logger
	if log == nil {
		log = logger.WithComponent("circuit")
	}

	return &Breaker{
		config: config,
		log:    log,
		state:  StateClosed,
	}
}

// Admit reports whether a call may proceed. In Closed and HalfOpen it
// always grants admission. In Open it grants admission once the elapsed
// monotonic time since the last failure exceeds the open duration, moving
// the breaker to HalfOpen; the decision is level-triggered, so a denied
// caller can simply try again later.
func (b *Breaker) Admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) > b.config.OpenDuration {
			b.toState(StateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

// ReportSuccess records a successful call: the failure count resets and a
// half-open breaker closes.
func (b *Breaker) ReportSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateHalfOpen {
		b.toState(StateClosed)
	}
}

// ReportFailure records a failed call. Reaching the failure threshold
// opens the circuit; a half-open breaker reopens on its first failure.
func (b *Breaker) ReportFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = time.Now()

	if b.failures >= b.config.FailureThreshold && b.state != StateOpen {
		b.toState(StateOpen)
	}
}

// Name returns the breaker's registry name.
func (b *Breaker) Name() string {
	return b.config.Name
}

// State returns the current circuit breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// OpenDuration returns the configured open duration.
func (b *Breaker) OpenDuration() time.Duration {
	return b.config.OpenDuration
}

// toState transitions to a new state. Callers hold b.mu.
func (b *Breaker) toState(to State) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to

	b.log.Info("state changed", logger.Fields(
		logger.FieldBreaker, b.config.Name,
		logger.FieldFromState, from.String(),
		logger.FieldToState, to.String(),
		logger.FieldFailures, b.failures,
	))

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, from, to)
	}
}
