package validation

import (
	"sync"
	"time"
)

// Result is the outcome of one validation run. Consumers define their own
// richer result types; the coordinator only needs to know validity to
// record Completed/Applied events.
type Result interface {
	IsValid() bool
}

type inFlight struct {
	token Token
}

// Coordinator issues monotonic tokens for validation requests and decides,
// when a result arrives, whether it is still current or must be discarded
// as stale. It is built for single-threaded use from the main loop: Start
// and TryApplyResult are called from one goroutine while the validations
// themselves run on workers and report back.
type Coordinator struct {
	mu           sync.Mutex
	nextToken    Token
	currentToken Token
	inFlight     []inFlight
	trace        Trace
	currentResult Result

	clock func() time.Duration // elapsed since coordinator creation
	start time.Time
}

// NewCoordinator returns a coordinator using the wall clock for elapsed
// timestamps.
func NewCoordinator() *Coordinator {
	c := &Coordinator{nextToken: 1, start: time.Now()}
	c.clock = func() time.Duration { return time.Since(c.start) }
	return c
}

// NewCoordinatorWithClock returns a coordinator whose elapsed time comes
// from clock instead of the wall clock, for deterministic trace tests.
func NewCoordinatorWithClock(clock func() time.Duration) *Coordinator {
	return &Coordinator{nextToken: 1, clock: clock}
}

func (c *Coordinator) elapsedNs() uint64 {
	return uint64(c.clock().Nanoseconds())
}

// Start issues a new token for a validation request, implicitly cancelling
// every still-in-flight validation (they are now superseded).
func (c *Coordinator) Start() Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.nextToken
	c.nextToken++
	elapsed := c.elapsedNs()

	for _, f := range c.inFlight {
		c.trace.Push(Event{Kind: Cancelled, Token: f.token, SupersededBy: token, ElapsedNs: elapsed})
	}
	c.inFlight = c.inFlight[:0]
	c.inFlight = append(c.inFlight, inFlight{token: token})

	c.currentToken = token
	c.trace.Push(Event{Kind: Started, Token: token, ElapsedNs: elapsed})
	return token
}

// CurrentToken returns the most recently issued token.
func (c *Coordinator) CurrentToken() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentToken
}

// TryApplyResult reports whether a validation result for token is still
// current (token == CurrentToken) and, if so, applies it. Stale results
// (an older token than current) are discarded and recorded as such; the
// return value tells the caller whether to act on result.
func (c *Coordinator) TryApplyResult(token Token, result Result, duration time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.elapsedNs()
	isValid := result.IsValid()
	c.trace.Push(Event{Kind: Completed, Token: token, IsValid: isValid, DurationNs: uint64(duration.Nanoseconds()), ElapsedNs: elapsed})

	kept := c.inFlight[:0]
	for _, f := range c.inFlight {
		if f.token != token {
			kept = append(kept, f)
		}
	}
	c.inFlight = kept

	if token < c.currentToken {
		c.trace.Push(Event{Kind: StaleDiscarded, Token: token, CurrentToken: c.currentToken, ElapsedNs: elapsed})
		return false
	}

	c.currentResult = result
	c.trace.Push(Event{Kind: Applied, Token: token, IsValid: isValid, ElapsedNs: elapsed})
	return true
}

// CurrentResult returns the most recently applied result, or nil if none
// has been applied yet.
func (c *Coordinator) CurrentResult() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentResult
}

// Trace returns a snapshot copy of the event trace.
func (c *Coordinator) Trace() Trace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Trace{events: append([]Event(nil), c.trace.events...)}
}

// InFlightCount reports how many validations are currently outstanding.
func (c *Coordinator) InFlightCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inFlight)
}
