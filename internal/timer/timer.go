package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Tick is the countdown state after a one-second step. Gen identifies the
// run that produced it; a Start, Stop or Reset bumps the generation so
// ticks already queued from an older run can be recognised and dropped.
type Tick struct {
	Gen       uint64 `json:"-"`
	Remaining int    `json:"time"`
	Running   bool   `json:"timerOn"`
	Limit     int    `json:"timeLimit"`
}

type Timer struct {
	clock clockwork.Clock
	ticks chan Tick

	mu        sync.Mutex
	gen       uint64
	limit     int
	remaining int
	running   bool
	cancel    context.CancelFunc
	ticker    clockwork.Ticker
}

func New(clock clockwork.Clock) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{
		clock: clock,
		ticks: make(chan Tick, 8),
	}
}

// Ticks delivers one value per elapsed second while running.
func (t *Timer) Ticks() <-chan Tick { return t.ticks }

// Start discards any running countdown and counts down from limitSeconds.
func (t *Timer) Start(limitSeconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.haltLocked()
	if limitSeconds < 0 {
		limitSeconds = 0
	}
	t.limit = limitSeconds
	t.remaining = limitSeconds
	t.runLocked()
}

// Resume continues a stopped countdown from where it was.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.haltLocked()
	t.runLocked()
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltLocked()
}

func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltLocked()
	t.remaining = t.limit
}

func (t *Timer) State() Tick {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Timer) Gen() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

func (t *Timer) stateLocked() Tick {
	return Tick{Gen: t.gen, Remaining: t.remaining, Running: t.running, Limit: t.limit}
}

func (t *Timer) haltLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	t.running = false
	t.gen++
}

func (t *Timer) runLocked() {
	if t.remaining <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.ticker = t.clock.NewTicker(time.Second)
	t.running = true
	go t.run(ctx, t.ticker, t.gen)
}

func (t *Timer) run(ctx context.Context, ticker clockwork.Ticker, gen uint64) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.remaining--
		if t.remaining <= 0 {
			t.remaining = 0
			t.running = false
		}
		tick := t.stateLocked()
		t.mu.Unlock()

		select {
		case t.ticks <- tick:
		case <-ctx.Done():
			return
		}
		if !tick.Running {
			return
		}
	}
}
