// Package gate implements a per-action cool-down guard for slow, side-effecting operations.
//
// A [Gate] moves between three states:
//
//	Armed --Invoke--> Disarmed --Settle(nil)--> CoolingDown --Elapse--> Armed
//	                  Disarmed --Settle(err)--> Armed
//
// It is a client-side heuristic against double submission, not a lock: other clients are not coordinated.
package gate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDelay is how long a gate stays closed after a successful call.
const DefaultDelay = 5 * time.Second

// ErrNotArmed is returned by [Gate.Do] while the gate is closed.
var ErrNotArmed = errors.New("action is cooling down")

// State of a [Gate].
type State int

const (
	Armed State = iota
	Disarmed
	CoolingDown
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Disarmed:
		return "disarmed"
	case CoolingDown:
		return "cooling_down"
	default:
		return ""
	}
}

// Option configures a [Gate].
type Option func(*Gate)

// WithClock replaces [time.Now], for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// Gate guards one action. The zero value is not usable; call [New].
type Gate struct {
	mu    sync.Mutex
	delay time.Duration
	now   func() time.Time
	state State
	until time.Time
}

// New creates an armed gate. A non-positive delay uses [DefaultDelay].
func New(delay time.Duration, opts ...Option) *Gate {
	if delay <= 0 {
		delay = DefaultDelay
	}
	g := &Gate{delay: delay, now: time.Now, state: Armed}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Delay is the cool-down applied after a successful call.
func (g *Gate) Delay() time.Duration { return g.delay }

// refresh promotes an expired cool-down to Armed. Callers hold mu.
func (g *Gate) refresh() {
	if g.state == CoolingDown && !g.now().Before(g.until) {
		g.state = Armed
		g.until = time.Time{}
	}
}

// Invoke disarms the gate and reports whether the action may run.
func (g *Gate) Invoke() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refresh()
	if g.state != Armed {
		return false
	}
	g.state = Disarmed
	return true
}

// Settle records the outcome of the invoked action.
//
// Success starts the cool-down and returns its length; failure re-arms at once and returns 0.
// Settling a gate that was not invoked has no effect.
func (g *Gate) Settle(err error) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Disarmed {
		return 0
	}
	if err != nil {
		g.state = Armed
		return 0
	}
	g.state = CoolingDown
	g.until = g.now().Add(g.delay)
	return g.delay
}

// Elapse re-arms the gate once its cool-down has run out and reports whether it is armed.
func (g *Gate) Elapse() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refresh()
	return g.state == Armed
}

// Armed reports whether [Gate.Invoke] would succeed now.
func (g *Gate) Armed() bool {
	return g.State() == Armed
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refresh()
	return g.state
}

// Remaining is the time left in the current cool-down.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refresh()
	if g.state != CoolingDown {
		return 0
	}
	return g.until.Sub(g.now())
}

// Do runs fn when the gate is armed and settles the gate with its result.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	if !g.Invoke() {
		return ErrNotArmed
	}
	err := fn(ctx)
	g.Settle(err)
	return err
}

// Set keeps one gate per action name, created on first use.
type Set struct {
	mu    sync.Mutex
	delay time.Duration
	opts  []Option
	gates map[string]*Gate
}

// NewSet creates a set whose gates share delay and opts.
func NewSet(delay time.Duration, opts ...Option) *Set {
	return &Set{delay: delay, opts: opts, gates: make(map[string]*Gate)}
}

// Get returns the gate for name.
func (s *Set) Get(name string) *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gates[name]
	if !ok {
		g = New(s.delay, s.opts...)
		s.gates[name] = g
	}
	return g
}
