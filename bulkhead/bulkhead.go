// Package bulkhead limits concurrent calls to isolate failures. It is an
// independent collaborator: the circuit composition does not interact
// with it, but the two combine naturally around one call site.
package bulkhead

import (
	"context"
	"time"

	apperrors "github.com/kbukum/shield/errors"
	"github.com/kbukum/shield/logger"
)

// Config configures a bulkhead.
type Config struct {
	// Name identifies this bulkhead in errors and logs.
	Name string
	// MaxConcurrent is the maximum number of concurrent calls.
	MaxConcurrent int
	// MaxWait is how long to wait for a slot. 0 means fail immediately.
	MaxWait time.Duration
	// OnReject is called when a call is rejected.
	OnReject func(name string)
	// Logger overrides the default logger.
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults: 10 concurrent calls, no wait.
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		MaxConcurrent: 10,
	}
}

// Bulkhead bounds the number of in-flight calls with a channel semaphore.
type Bulkhead struct {
	config Config
	log    *logger.Logger
	sem    chan struct{}
}

// New creates a new bulkhead.
func New(config Config) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	log := config.Logger
	if log == nil {
		log = logger.WithComponent("bulkhead")
	}

	return &Bulkhead{
		config: config,
		log:    log,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Do runs fn within the bulkhead. When no slot frees up in time it
// returns a BULKHEAD_FULL error without invoking fn.
func (b *Bulkhead) Do(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		b.log.Debug("call rejected", logger.Fields(
			logger.FieldBulkhead, b.config.Name,
			logger.FieldError, err.Error(),
		))
		if b.config.OnReject != nil {
			b.config.OnReject(b.config.Name)
		}
		return err
	}
	defer b.release()

	return fn()
}

// DoWithResult runs a function that returns a value within the bulkhead.
func DoWithResult[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	var result T
	err := b.Do(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// acquire tries to take a slot, waiting up to MaxWait.
func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		return apperrors.BulkheadFull(b.config.Name)
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return apperrors.BulkheadFull(b.config.Name).WithDetail("waited", b.config.MaxWait.String())
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) release() {
	<-b.sem
}

// Name returns the bulkhead's name.
func (b *Bulkhead) Name() string {
	return b.config.Name
}

// Available returns the number of free slots.
func (b *Bulkhead) Available() int {
	return b.config.MaxConcurrent - len(b.sem)
}

// InUse returns the number of slots currently in use.
func (b *Bulkhead) InUse() int {
	return len(b.sem)
}

// MaxConcurrent returns the maximum concurrent calls allowed.
func (b *Bulkhead) MaxConcurrent() int {
	return b.config.MaxConcurrent
}
