// internal/resilience/guard.go
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrRateLimited is returned when the call budget is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrBulkheadFull is returned when the concurrency cap is reached.
	// Excess calls are rejected, never queued.
	ErrBulkheadFull = errors.New("bulkhead capacity exhausted")
	// ErrUnavailable is returned when the circuit is open and calls are
	// short-circuited without reaching the dependency.
	ErrUnavailable = errors.New("service unavailable")
)

// Config tunes one Guard. Zero values fall back to the defaults below.
type Config struct {
	// Rate and Burst bound the admitted calls per second.
	Rate  float64
	Burst int
	// MaxConcurrent caps in-flight calls; excess calls fail immediately.
	MaxConcurrent int64
	// MaxAttempts is the total number of tries per call, first included.
	MaxAttempts uint64
	// RetryInterval is the initial backoff between attempts.
	RetryInterval time.Duration
	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit; Cooldown is how long it stays open before probing, and
	// HalfOpenProbes how many probe calls the half-open state admits.
	BreakerThreshold uint32
	Cooldown         time.Duration
	HalfOpenProbes   uint32
	// IsPermanent classifies errors that must never be retried and must
	// not count as dependency failures (validation, not-found).
	IsPermanent func(error) bool
}

func (c Config) withDefaults() Config {
	if c.Rate <= 0 {
		c.Rate = 50
	}
	if c.Burst <= 0 {
		c.Burst = 25
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 25
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 100 * time.Millisecond
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 10 * time.Second
	}
	if c.HalfOpenProbes == 0 {
		c.HalfOpenProbes = 2
	}
	if c.IsPermanent == nil {
		c.IsPermanent = func(error) bool { return false }
	}
	return c
}

// Guard wraps calls to a dependency with four policies applied in a fixed
// order: rate limiter, bulkhead, retry, circuit breaker. Each guarded
// operation gets its own instance so one operation's failures cannot trip
// another's breaker or starve its bulkhead.
type Guard struct {
	name      string
	cfg       Config
	limiter   *rate.Limiter
	bulkhead  *semaphore.Weighted
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	permanent func(error) bool
}

// NewGuard creates a guard for one logical operation name.
func NewGuard(name string, cfg Config, logger *zap.Logger) *Guard {
	cfg = cfg.withDefaults()

	g := &Guard{
		name:      name,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		bulkhead:  semaphore.NewWeighted(cfg.MaxConcurrent),
		logger:    logger,
		permanent: cfg.IsPermanent,
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenProbes,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		// Terminal answers (not found, validation) are not dependency
		// failures and must not open the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || g.permanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("operation", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return g
}

// Execute runs op under the guard's policies. It returns op's error
// unchanged for terminal failures, ErrRateLimited or ErrBulkheadFull when
// the call is rejected up front, ErrUnavailable when the circuit is open,
// and the last transient error once retries are exhausted.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) error) error {
	if !g.limiter.Allow() {
		return fmt.Errorf("%s: %w", g.name, ErrRateLimited)
	}

	if !g.bulkhead.TryAcquire(1) {
		return fmt.Errorf("%s: %w", g.name, ErrBulkheadFull)
	}
	defer g.bulkhead.Release(1)

	attempt := func() error {
		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, op(ctx)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%s: %w", g.name, ErrUnavailable))
		case g.permanent(err):
			return backoff.Permanent(err)
		default:
			g.logger.Warn("guarded call failed, may retry",
				zap.String("operation", g.name),
				zap.Error(err),
			)
			return err
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.cfg.RetryInterval

	return backoff.Retry(attempt, backoff.WithContext(
		backoff.WithMaxRetries(policy, g.cfg.MaxAttempts-1), ctx))
}

// IsUnavailable reports whether err means the dependency could not be
// consulted at all: circuit open, bulkhead full, or rate limit exceeded.
// Callers use it to tell "not found" apart from "could not determine".
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrBulkheadFull) ||
		errors.Is(err, ErrRateLimited)
}
