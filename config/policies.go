package config

import (
	"time"

	"github.com/kbukum/shield/backoff"
	"github.com/kbukum/shield/bulkhead"
	"github.com/kbukum/shield/circuit"
	apperrors "github.com/kbukum/shield/errors"
	"github.com/kbukum/shield/logger"
	"github.com/kbukum/shield/retry"
	"github.com/kbukum/shield/timeout"
)

// Backoff strategy names accepted in configuration.
const (
	BackoffFixed       = "fixed"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
	BackoffJittered    = "jittered"
)

// RetryConfig configures a retry policy.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	Backoff      string        `yaml:"backoff" mapstructure:"backoff" validate:"oneof=fixed linear exponential jittered"`
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay" validate:"gte=0"`
	Increment    time.Duration `yaml:"increment" mapstructure:"increment" validate:"gte=0"`
	Multiplier   float64       `yaml:"multiplier" mapstructure:"multiplier" validate:"gte=0"`
	MaxDelay     time.Duration `yaml:"max_delay" mapstructure:"max_delay" validate:"gte=0"`
	JitterFactor float64       `yaml:"jitter_factor" mapstructure:"jitter_factor" validate:"gte=0,lte=1"`
}

// ApplyDefaults applies default values to retry configuration.
func (c *RetryConfig) ApplyDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = retry.DefaultMaxAttempts
	}
	if c.Backoff == "" {
		c.Backoff = BackoffExponential
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = backoff.DefaultInitialDelay
	}
	if c.Multiplier == 0 {
		c.Multiplier = backoff.DefaultMultiplier
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = backoff.DefaultMaxDelay
	}
}

// Build creates a retry policy from the configuration.
func (c *RetryConfig) Build() (retry.Policy, error) {
	c.ApplyDefaults()
	if err := Validate(c); err != nil {
		return retry.Policy{}, err
	}

	var strategy backoff.Strategy
	switch c.Backoff {
	case BackoffFixed:
		strategy = backoff.NewFixed(c.InitialDelay)
	case BackoffLinear:
		increment := c.Increment
		if increment == 0 {
			increment = c.InitialDelay
		}
		strategy = backoff.NewLinear(increment, c.MaxDelay)
	case BackoffExponential:
		strategy = backoff.NewExponential(c.InitialDelay, c.Multiplier, c.MaxDelay)
	case BackoffJittered:
		strategy = backoff.NewJittered(c.InitialDelay, c.Multiplier, c.MaxDelay, c.JitterFactor)
	default:
		return retry.Policy{}, apperrors.InvalidConfiguration("unknown backoff strategy: " + c.Backoff)
	}

	return retry.Policy{
		MaxAttempts: c.MaxAttempts,
		Backoff:     strategy,
	}, nil
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	Name             string        `yaml:"name" mapstructure:"name" validate:"required"`
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=1"`
	OpenDuration     time.Duration `yaml:"open_duration" mapstructure:"open_duration" validate:"gte=0"`
}

// ApplyDefaults applies default values to breaker configuration.
func (c *BreakerConfig) ApplyDefaults() {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenDuration == 0 {
		c.OpenDuration = 60 * time.Second
	}
}

// Build creates a breaker config from the configuration.
func (c *BreakerConfig) Build() (circuit.Config, error) {
	c.ApplyDefaults()
	if err := Validate(c); err != nil {
		return circuit.Config{}, err
	}
	return circuit.Config{
		Name:             c.Name,
		FailureThreshold: c.FailureThreshold,
		OpenDuration:     c.OpenDuration,
	}, nil
}

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	Name          string        `yaml:"name" mapstructure:"name" validate:"required"`
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=1"`
	MaxWait       time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
}

// ApplyDefaults applies default values to bulkhead configuration.
func (c *BulkheadConfig) ApplyDefaults() {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 10
	}
}

// Build creates a bulkhead config from the configuration.
func (c *BulkheadConfig) Build() (bulkhead.Config, error) {
	c.ApplyDefaults()
	if err := Validate(c); err != nil {
		return bulkhead.Config{}, err
	}
	return bulkhead.Config{
		Name:          c.Name,
		MaxConcurrent: c.MaxConcurrent,
		MaxWait:       c.MaxWait,
	}, nil
}

// TimeoutConfig configures a timeout policy.
type TimeoutConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// ApplyDefaults applies default values to timeout configuration.
func (c *TimeoutConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = timeout.DefaultTimeout
	}
}

// Build creates a timeout policy from the configuration.
func (c *TimeoutConfig) Build() (timeout.Policy, error) {
	c.ApplyDefaults()
	if err := Validate(c); err != nil {
		return timeout.Policy{}, err
	}
	return timeout.Policy{Timeout: c.Timeout}, nil
}

// ShieldConfig is the top-level configuration for an application using
// shield: logging plus named policy sections.
type ShieldConfig struct {
	Logging  logger.Config   `yaml:"logging" mapstructure:"logging"`
	Retry    RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Timeout  TimeoutConfig   `yaml:"timeout" mapstructure:"timeout"`
	Breakers []BreakerConfig `yaml:"breakers" mapstructure:"breakers" validate:"dive"`
	Bulkhead BulkheadConfig  `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// ApplyDefaults applies defaults to every section.
func (c *ShieldConfig) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	c.Retry.ApplyDefaults()
	c.Timeout.ApplyDefaults()
	for i := range c.Breakers {
		c.Breakers[i].ApplyDefaults()
	}
	c.Bulkhead.ApplyDefaults()
}

// RegisterBreakers creates every configured breaker in the registry.
func (c *ShieldConfig) RegisterBreakers(reg *circuit.Registry) error {
	for i := range c.Breakers {
		cfg, err := c.Breakers[i].Build()
		if err != nil {
			return err
		}
		reg.Create(cfg)
	}
	return nil
}
