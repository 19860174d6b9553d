package observability

import (
	"strconv"

	"github.com/kbukum/shield/circuit"
)

// HealthStatus represents the health state of a breaker or registry.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual breaker. A closed breaker
// is up, a half-open breaker is degraded but operational, an open breaker
// is down.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}

// RegistryHealth describes the overall health of a registry: down if any
// breaker is open, degraded if any is half-open, up otherwise.
type RegistryHealth struct {
	Status   HealthStatus `json:"status"`
	Breakers []Health     `json:"breakers,omitempty"`
}

// BreakerHealth returns a health snapshot of one breaker.
func BreakerHealth(b *circuit.Breaker) Health {
	state := b.State()

	var status HealthStatus
	switch state {
	case circuit.StateClosed:
		status = HealthStatusUp
	case circuit.StateHalfOpen:
		status = HealthStatusDegraded
	default:
		status = HealthStatusDown
	}

	return Health{
		Name:   b.Name(),
		Status: status,
		Details: map[string]string{
			"state":    state.String(),
			"failures": strconv.Itoa(b.Failures()),
		},
	}
}

// CheckRegistry returns a health snapshot of every breaker in the
// registry.
func CheckRegistry(reg *circuit.Registry) RegistryHealth {
	health := RegistryHealth{Status: HealthStatusUp}

	for _, b := range reg.Breakers() {
		bh := BreakerHealth(b)
		health.Breakers = append(health.Breakers, bh)

		switch bh.Status {
		case HealthStatusDown:
			health.Status = HealthStatusDown
		case HealthStatusDegraded:
			if health.Status != HealthStatusDown {
				health.Status = HealthStatusDegraded
			}
		}
	}

	return health
}
