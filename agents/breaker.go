package agents

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting it.
var ErrCircuitOpen = errors.New("circuit breaker open")

// BreakerState is the circuit breaker's current mode.
type BreakerState string

const (
	// BreakerClosed allows all calls.
	BreakerClosed BreakerState = "closed"
	// BreakerOpen rejects all calls until the reset timeout elapses.
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen allows probe calls to test recovery.
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	// FailureThreshold is the consecutive failure count that opens the
	// circuit.
	FailureThreshold int

	// ResetTimeout is how long an open circuit waits before allowing a
	// probe call.
	ResetTimeout time.Duration

	// SuccessThreshold is the probe success count that closes a half-open
	// circuit.
	SuccessThreshold int
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		SuccessThreshold: 2,
	}
}

// Breaker is a circuit breaker guarding one analyzer endpoint. It is safe
// for concurrent use.
type Breaker struct {
	config BreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreaker creates a closed Breaker with the given settings.
func NewBreaker(config BreakerConfig) *Breaker {
	return &Breaker{
		config: config,
		now:    time.Now,
		state:  BreakerClosed,
	}
}

// State returns the breaker's current mode, transitioning open to half-open
// when the reset timeout has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// Allow reports whether a call may proceed. In half-open mode probe calls
// are allowed; their outcome decides the next transition.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state != BreakerOpen
}

// RecordSuccess notes a successful call. Enough half-open successes close
// the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == BreakerHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = BreakerClosed
			b.successes = 0
		}
	}
}

// RecordFailure notes a failed call. A half-open failure reopens the circuit
// immediately; closed circuits open at the failure threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.successes = 0
	b.lastFailure = b.now()

	if b.state == BreakerHalfOpen || b.failures >= b.config.FailureThreshold {
		b.state = BreakerOpen
	}
}

// refresh moves an open circuit to half-open once the reset timeout has
// elapsed. Callers must hold b.mu.
func (b *Breaker) refresh() {
	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.config.ResetTimeout {
		b.state = BreakerHalfOpen
		b.successes = 0
	}
}
