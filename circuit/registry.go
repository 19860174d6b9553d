package circuit

import (
	"sort"
	"sync"
)

// Registry is a name-indexed collection of circuit breakers. Call sites
// that look up the same name share one breaker, so failures observed at
// one site contribute to opening the circuit for all of them. The
// registry owns each breaker; callers hold shared references.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*Breaker)}
}

// Get returns the breaker registered under name, creating one with
// default settings if none exists.
func (r *Registry) Get(name string) *Breaker {
	return r.Create(DefaultConfig(name))
}

// Create returns the breaker registered under cfg.Name, creating it from
// cfg if none exists. An already-registered breaker wins: its settings
// are not replaced.
func (r *Registry) Create(cfg Config) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[cfg.Name]; ok {
		return b
	}
	b := NewBreaker(cfg)
	r.breakers[cfg.Name] = b
	return b
}

// Register adds a breaker constructed outside the registry, making it
// visible to name lookups. If the name is already taken the registered
// instance wins and is returned, so both construction paths observe the
// same breaker.
func (r *Registry) Register(b *Breaker) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.breakers[b.Name()]; ok {
		return existing
	}
	r.breakers[b.Name()] = b
	return b
}

// Names returns the registered breaker names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Breakers returns a snapshot of all registered breakers.
func (r *Registry) Breakers() []*Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	return breakers
}

// Clear removes all registered breakers. Intended for test isolation.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers = make(map[string]*Breaker)
}

// defaultRegistry is the process-wide registry used by the package-level
// functions and by compositions constructed with NewCircuit.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Get returns the breaker registered under name in the process-wide
// registry, creating it with default settings if needed.
func Get(name string) *Breaker {
	return defaultRegistry.Get(name)
}

// Create returns the breaker for cfg.Name in the process-wide registry,
// creating it from cfg if needed.
func Create(cfg Config) *Breaker {
	return defaultRegistry.Create(cfg)
}

// Register adds an externally constructed breaker to the process-wide
// registry.
func Register(b *Breaker) *Breaker {
	return defaultRegistry.Register(b)
}

// Clear removes all breakers from the process-wide registry. Intended
// for test isolation.
func Clear() {
	defaultRegistry.Clear()
}
