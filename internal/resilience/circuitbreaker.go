// Package resilience shields the interview pipeline from flaky capability
// backends. A [CircuitBreaker] stops hammering an STT, LLM, or TTS backend
// once it fails repeatedly, and a [FallbackGroup] fails over to alternative
// backends while the primary's breaker is open.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] when the breaker has
// tripped and its reset timeout has not yet elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards all calls to the backend.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrCircuitOpen] until the reset
	// timeout elapses.
	StateOpen

	// StateHalfOpen admits a limited number of probe calls. Enough successes
	// close the breaker; a single failure re-opens it.
	StateHalfOpen
)

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

// CircuitBreakerConfig tunes a [CircuitBreaker]. Zero-value fields take the
// documented defaults.
type CircuitBreakerConfig struct {
	// Name labels the backend in log output.
	Name string

	// MaxFailures is how many consecutive failures trip the breaker.
	// Default: 5.
	MaxFailures int

	// ResetTimeout is how long a tripped breaker waits before probing the
	// backend again. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax is how many probe calls the half-open state admits, and how
	// many must succeed for the breaker to close. Default: 3.
	HalfOpenMax int
}

// CircuitBreaker implements the three-state breaker pattern
// (closed, open, half-open).
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int       // consecutive failures while closed
	lastFailure time.Time // drives the open -> half-open transition
	probes      int       // calls admitted in the current half-open window
	probeOK     int       // successful probes in the current half-open window
}

// NewCircuitBreaker creates a breaker in the closed state, filling in defaults
// for zero-value config fields.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// Execute runs fn if the breaker admits the call, recording the outcome.
// While the breaker is open, fn is not called and [ErrCircuitOpen] is
// returned instead.
func (b *CircuitBreaker) Execute(fn func() error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}
	err = fn()
	b.record(err, probe)
	return err
}

// admit decides whether a call may proceed and reports whether it counts as a
// half-open probe.
func (b *CircuitBreaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) < b.cfg.ResetTimeout {
			return false, ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.probes = 0
		b.probeOK = 0
		slog.Info("breaker half-open, probing backend", "backend", b.cfg.Name)

	case StateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMax {
			return false, ErrCircuitOpen
		}
	}

	if b.state == StateHalfOpen {
		b.probes++
		return true, nil
	}
	return false, nil
}

// record updates breaker state from a call outcome.
func (b *CircuitBreaker) record(err error, probe bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if !probe {
			b.failures = 0
			return
		}
		b.probeOK++
		if b.probeOK >= b.cfg.HalfOpenMax {
			b.state = StateClosed
			b.failures = 0
			slog.Info("breaker closed, backend recovered", "backend", b.cfg.Name)
		}
		return
	}

	b.lastFailure = time.Now()
	if probe {
		// A single probe failure re-opens for a full reset timeout.
		b.state = StateOpen
		slog.Warn("breaker re-opened, probe failed", "backend", b.cfg.Name)
		return
	}

	b.failures++
	if b.failures >= b.cfg.MaxFailures {
		b.state = StateOpen
		slog.Warn("breaker opened",
			"backend", b.cfg.Name,
			"consecutive_failures", b.failures,
		)
	}
}

// State returns the breaker's current state. An open breaker whose reset
// timeout has elapsed reports [StateHalfOpen]; the actual transition happens
// on the next [CircuitBreaker.Execute].
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && time.Since(b.lastFailure) >= b.cfg.ResetTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to [StateClosed] and clears all counters.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.probes = 0
	b.probeOK = 0
	slog.Info("breaker reset", "backend", b.cfg.Name)
}
