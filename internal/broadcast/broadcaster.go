package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Transport carries messages to spectators. Delivery is best effort.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type TransportFunc func(ctx context.Context, msg Message) error

func (f TransportFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Fanout sends to every transport and joins their errors.
type Fanout []Transport

func (f Fanout) Send(ctx context.Context, msg Message) error {
	var err error
	for _, t := range f {
		if t == nil {
			continue
		}
		err = multierr.Append(err, t.Send(ctx, msg))
	}
	return err
}

// Delivery says what Publish did with a snapshot.
type Delivery int

const (
	Unchanged Delivery = iota
	Refreshed
	Structural
)

func (d Delivery) String() string {
	switch d {
	case Refreshed:
		return "refresh"
	case Structural:
		return "structural"
	default:
		return "unchanged"
	}
}

// Broadcaster publishes redacted state to a Transport. Transport failures
// are logged and never reach the caller.
type Broadcaster struct {
	transport Transport
	log       *zap.Logger

	mu       sync.Mutex
	hasState bool
	key      Key
	body     []byte
	state    StateUpdate
	hasTick  bool
	tick     TimerUpdate
}

func NewBroadcaster(t Transport, log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{transport: t, log: log}
}

// Publish sends a state-update when the snapshot differs from the last one
// sent. Timer fields are ignored for the comparison; ticks travel on their
// own channel.
func (b *Broadcaster) Publish(ctx context.Context, snap Snapshot) Delivery {
	cmp := snap
	cmp.Timer = TimerUpdate{}
	body, err := json.Marshal(cmp)
	if err != nil {
		b.log.Error("marshal snapshot", zap.Error(err))
		return Unchanged
	}

	b.mu.Lock()
	key := snap.Key()
	d := Refreshed
	switch {
	case !b.hasState || key != b.key:
		d = Structural
	case bytes.Equal(body, b.body):
		b.mu.Unlock()
		return Unchanged
	}
	b.hasState = true
	b.key = key
	b.body = body
	b.state = NewStateUpdate(snap)
	msg := b.state
	b.mu.Unlock()

	b.send(ctx, msg)
	b.log.Debug("state published", zap.Stringer("delivery", d), zap.Stringer("key", key))
	return d
}

// Tick sends the countdown on the timer channel. It never touches the
// structural key.
func (b *Broadcaster) Tick(ctx context.Context, t TimerUpdate) {
	b.mu.Lock()
	b.hasTick = true
	b.tick = t
	if b.hasState {
		b.state.Snapshot.Timer = t
	}
	b.mu.Unlock()

	b.send(ctx, t)
}

func (b *Broadcaster) Media(ctx context.Context, cmd VideoCommand) {
	b.send(ctx, cmd)
}

// Latest returns the messages a newly joined spectator needs.
func (b *Broadcaster) Latest() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Message
	if b.hasState {
		out = append(out, b.state)
	}
	if b.hasTick {
		out = append(out, b.tick)
	}
	return out
}

// Forget drops the remembered state so the next Publish is structural.
func (b *Broadcaster) Forget() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasState = false
	b.body = nil
}

func (b *Broadcaster) send(ctx context.Context, msg Message) {
	if b.transport == nil {
		return
	}
	if err := b.transport.Send(ctx, msg); err != nil {
		b.log.Warn("broadcast delivery failed", zap.String("channel", string(msg.Channel())), zap.Error(err))
	}
}
