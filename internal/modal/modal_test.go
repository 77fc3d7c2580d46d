package modal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedDetails blocks each Ensure until the test resolves that id
type gatedDetails struct {
	mu      sync.Mutex
	waiting map[string]chan error
}

func newGatedDetails() *gatedDetails {
	return &gatedDetails{waiting: map[string]chan error{}}
}

func (g *gatedDetails) gate(id string) chan error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.waiting[id]
	if !ok {
		ch = make(chan error, 1)
		g.waiting[id] = ch
	}
	return ch
}

func (g *gatedDetails) Ensure(ctx context.Context, id string) (domain.Title, error) {
	err := <-g.gate(id)
	return domain.Title{ID: id}, err
}

func (g *gatedDetails) resolve(id string, err error) {
	g.gate(id) <- err
}

// manualTimers records scheduled closes and fires them on demand
type manualTimers struct {
	mu     sync.Mutex
	fns    []func()
	delays []time.Duration
	stops  int
}

type manualTimer struct {
	m  *manualTimers
	ix int
}

func (t manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.stops++
	return true
}

func (m *manualTimers) afterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, f)
	m.delays = append(m.delays, d)
	return manualTimer{m: m, ix: len(m.fns) - 1}
}

func (m *manualTimers) fire(i int) {
	m.mu.Lock()
	f := m.fns[i]
	m.mu.Unlock()
	f()
}

func newCoordinator(t *testing.T) (*Coordinator, *gatedDetails, *manualTimers) {
	t.Helper()
	details := newGatedDetails()
	timers := &manualTimers{}
	c := New(context.Background(), details, nil, WithAfterFunc(timers.afterFunc))
	return c, details, timers
}

func waitState(t *testing.T, c *Coordinator, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, time.Second, time.Millisecond,
		"want %v", want)
}

func opening(id string) State { return State{Phase: PhaseOpening, TitleID: id} }
func open(id string) State    { return State{Phase: PhaseOpen, TitleID: id} }
func closing(id string) State { return State{Phase: PhaseClosing, TitleID: id} }

var closed = State{Phase: PhaseClosed}

func TestOpen_DetailReadyOpens(t *testing.T) {
	c, details, _ := newCoordinator(t)
	assert.Equal(t, closed, c.State())
	assert.False(t, c.State().Visible())

	c.Open("A")
	assert.Equal(t, opening("A"), c.State())

	details.resolve("A", nil)
	waitState(t, c, open("A"))
	assert.True(t, c.State().Visible())
}

func TestOpen_DetailFailureStillOpens(t *testing.T) {
	c, details, _ := newCoordinator(t)
	c.Open("A")
	details.resolve("A", domain.ErrNotFound)
	waitState(t, c, open("A"))
}

func TestOpen_SupersedesPendingOpen(t *testing.T) {
	c, details, _ := newCoordinator(t)

	c.Open("X")
	c.Open("Y")
	assert.Equal(t, opening("Y"), c.State())

	// A late result for X is a no-op.
	details.resolve("X", nil)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, opening("Y"), c.State())

	details.resolve("Y", nil)
	waitState(t, c, open("Y"))
}

func TestOpen_SameTitleIsNoOp(t *testing.T) {
	c, details, _ := newCoordinator(t)

	var seen []State
	var mu sync.Mutex
	c.Observe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	c.Open("A")
	c.Open("A")
	details.resolve("A", nil)
	waitState(t, c, open("A"))
	c.Open("A")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{opening("A"), open("A")}, seen)
}

func TestOpen_FromOpenSwitchesTitle(t *testing.T) {
	c, details, _ := newCoordinator(t)
	c.Open("A")
	details.resolve("A", nil)
	waitState(t, c, open("A"))

	c.Open("B")
	assert.Equal(t, opening("B"), c.State())
	details.resolve("B", nil)
	waitState(t, c, open("B"))
}

func TestClose_TimerCompletesClose(t *testing.T) {
	c, details, timers := newCoordinator(t)
	c.Open("A")
	details.resolve("A", nil)
	waitState(t, c, open("A"))

	c.Close()
	assert.Equal(t, closing("A"), c.State())
	require.Len(t, timers.fns, 1)
	assert.Equal(t, DefaultCloseDelay, timers.delays[0])

	c.Close()
	assert.Len(t, timers.fns, 1, "second close is a no-op")

	timers.fire(0)
	assert.Equal(t, closed, c.State())

	c.Close()
	assert.Equal(t, closed, c.State())
}

func TestClose_WhileOpeningDiscardsDetail(t *testing.T) {
	c, details, timers := newCoordinator(t)
	c.Open("A")
	c.Close()
	assert.Equal(t, closing("A"), c.State())

	details.resolve("A", nil)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, closing("A"), c.State())

	timers.fire(0)
	assert.Equal(t, closed, c.State())
}

func TestOpen_WhileClosingCancelsTimer(t *testing.T) {
	c, details, timers := newCoordinator(t)
	c.Open("A")
	details.resolve("A", nil)
	waitState(t, c, open("A"))
	c.Close()

	c.Open("B")
	assert.Equal(t, opening("B"), c.State())
	assert.Equal(t, 1, timers.stops)

	// A timer that fires anyway after supersession is ignored.
	timers.fire(0)
	assert.Equal(t, opening("B"), c.State())

	details.resolve("B", nil)
	waitState(t, c, open("B"))
}

func TestOpen_SameTitleWhileClosingReopens(t *testing.T) {
	c, details, timers := newCoordinator(t)
	c.Open("A")
	details.resolve("A", nil)
	waitState(t, c, open("A"))
	c.Close()

	c.Open("A")
	assert.Equal(t, opening("A"), c.State())
	timers.fire(0)
	assert.Equal(t, opening("A"), c.State())

	details.resolve("A", nil)
	waitState(t, c, open("A"))
}

func TestCoordinator_NeverTwoLiveTitles(t *testing.T) {
	c, details, _ := newCoordinator(t)

	var mu sync.Mutex
	var seen []State
	c.Observe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	ids := []string{"1", "2", "3", "4"}
	for _, id := range ids {
		c.Open(id)
	}
	for _, id := range ids {
		details.resolve(id, nil)
	}
	waitState(t, c, open("4"))
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, s := range seen {
		if s.Phase == PhaseOpen {
			assert.Equal(t, "4", s.TitleID, "only the live title ever opens")
		}
	}
}

func TestCloseDelayOption(t *testing.T) {
	timers := &manualTimers{}
	details := newGatedDetails()
	c := New(context.Background(), details, nil, WithAfterFunc(timers.afterFunc), WithCloseDelay(time.Second))
	c.Open("A")
	c.Close()
	require.Len(t, timers.delays, 1)
	assert.Equal(t, time.Second, timers.delays[0])
}

func TestRealTimerCloses(t *testing.T) {
	details := newGatedDetails()
	c := New(context.Background(), details, nil, WithCloseDelay(5*time.Millisecond))
	c.Open("A")
	details.resolve("A", nil)
	waitState(t, c, open("A"))
	c.Close()
	waitState(t, c, closed)
}
