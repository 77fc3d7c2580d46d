// Package modal coordinates the single info overlay.
//
// The overlay moves through Closed, Opening(id), Open(id) and Closing(id).
// Every open or close gesture starts a new generation; detail results and
// close timers from an older generation are discarded when they arrive.
package modal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// DefaultCloseDelay matches the overlay's exit animation
const DefaultCloseDelay = 300 * time.Millisecond

// Phase is the overlay lifecycle stage
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpening
	PhaseOpen
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// State is the overlay state. TitleID is empty when Closed.
type State struct {
	Phase   Phase
	TitleID string
}

// Visible reports whether the overlay is on screen
func (s State) Visible() bool {
	return s.Phase != PhaseClosed
}

// DetailLoader loads the detail shown in the overlay
type DetailLoader interface {
	Ensure(ctx context.Context, id string) (domain.Title, error)
}

// Timer is a pending close
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithCloseDelay sets how long Closing lasts before Closed
func WithCloseDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.delay = d }
}

// WithAfterFunc replaces the close timer factory
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Coordinator) { c.afterFunc = f }
}

// Coordinator owns the overlay state. Create one per application.
type Coordinator struct {
	ctx       context.Context
	details   DetailLoader
	logger    *slog.Logger
	delay     time.Duration
	afterFunc AfterFunc

	mu        sync.Mutex
	state     State
	gen       uint64
	timer     Timer
	observers []func(State)
}

// New creates a closed coordinator. Detail loads run under ctx.
func New(ctx context.Context, details DetailLoader, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		ctx:       ctx,
		details:   details,
		logger:    logger,
		delay:     DefaultCloseDelay,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current overlay state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Observe registers fn to run after every transition
func (c *Coordinator) Observe(fn func(State)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Open shows the overlay for id. Opening the title that is already opening
// or open is a no-op; any other state is superseded immediately.
func (c *Coordinator) Open(id string) {
	c.mu.Lock()
	if (c.state.Phase == PhaseOpening || c.state.Phase == PhaseOpen) && c.state.TitleID == id {
		c.mu.Unlock()
		return
	}
	c.stopTimer()
	c.gen++
	gen := c.gen
	c.state = State{Phase: PhaseOpening, TitleID: id}
	snap := c.state
	c.mu.Unlock()

	c.logger.Debug("modal opening", "titleID", id, "generation", gen)
	c.notify(snap)

	go func() {
		_, err := c.details.Ensure(c.ctx, id)
		c.detailSettled(gen, id, err)
	}()
}

// detailSettled moves Opening to Open if the load still belongs to the
// live generation. A failed load still opens; the overlay shows the error.
func (c *Coordinator) detailSettled(gen uint64, id string, err error) {
	c.mu.Lock()
	if gen != c.gen || c.state != (State{Phase: PhaseOpening, TitleID: id}) {
		c.mu.Unlock()
		c.logger.Debug("discarded stale detail", "titleID", id, "generation", gen)
		return
	}
	c.state.Phase = PhaseOpen
	snap := c.state
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("modal open with detail error", "titleID", id, "error", err)
	}
	c.notify(snap)
}

// Close starts the exit. The overlay reaches Closed after the close delay
// unless another Open supersedes it first.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.state.Phase == PhaseClosed || c.state.Phase == PhaseClosing {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.state.Phase = PhaseClosing
	snap := c.state
	c.timer = c.afterFunc(c.delay, func() { c.closeElapsed(gen) })
	c.mu.Unlock()

	c.logger.Debug("modal closing", "titleID", snap.TitleID, "generation", gen)
	c.notify(snap)
}

func (c *Coordinator) closeElapsed(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state.Phase != PhaseClosing {
		c.mu.Unlock()
		return
	}
	c.state = State{Phase: PhaseClosed}
	c.timer = nil
	snap := c.state
	c.mu.Unlock()

	c.notify(snap)
}

// stopTimer cancels a pending close. Caller holds c.mu.
func (c *Coordinator) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) notify(s State) {
	c.mu.Lock()
	observers := c.observers
	c.mu.Unlock()
	for _, fn := range observers {
		fn(s)
	}
}
