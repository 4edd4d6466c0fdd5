package lobby

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/session"
)

type Msg interface{ isLobbyMsg() }

// FromHost carries one host command. Reply, when set, gets the result.
type FromHost struct {
	Cmd   session.Command
	Reply chan error
}

func (FromHost) isLobbyMsg() {}

// JoinHost registers a control client; it receives full host views.
type JoinHost struct {
	ClientID string
	Outbox   chan session.HostView
}

func (JoinHost) isLobbyMsg() {}

// JoinDisplay registers a spectator; it receives redacted messages only.
type JoinDisplay struct {
	ClientID string
	Outbox   chan broadcast.Message
}

func (JoinDisplay) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	Code        string
	Version     int
	NumHosts    int
	NumDisplays int
	State       session.HostView
}

// Config describes the session a lobby runs.
type Config struct {
	Code        string
	Definition  quiz.Definition
	Theme       string
	AutoAdvance bool
	Clock       clockwork.Clock
	// Mirror receives every spectator message alongside connected displays.
	Mirror broadcast.Transport
	Logger *zap.Logger
}

type Lobby struct {
	code     string
	inbox    chan Msg
	sess     *session.Session
	hosts    map[string]chan session.HostView
	displays map[string]chan broadcast.Message
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewLobby(parent context.Context, cfg Config) (*Lobby, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("code", cfg.Code))

	l := &Lobby{
		code:     cfg.Code,
		inbox:    make(chan Msg, 64),
		hosts:    make(map[string]chan session.HostView),
		displays: make(map[string]chan broadcast.Message),
		log:      log,
		done:     make(chan struct{}),
	}

	transport := broadcast.Fanout{broadcast.TransportFunc(l.toDisplays)}
	if cfg.Mirror != nil {
		transport = append(transport, cfg.Mirror)
	}
	sess, err := session.New(cfg.Definition,
		session.WithClock(cfg.Clock),
		session.WithLogger(log),
		session.WithTransport(transport),
		session.WithAutoAdvance(cfg.AutoAdvance),
		session.WithTheme(cfg.Theme),
	)
	if err != nil {
		return nil, err
	}
	l.sess = sess
	l.sess.Subscribe(l.toHosts)

	l.ctx, l.cancel = context.WithCancel(parent)
	l.sess.Sync(l.ctx)

	go l.loop()
	return l, nil
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case tick := <-l.sess.Ticks():
			l.sess.HandleTick(l.ctx, tick)

		case m := <-l.inbox:
			switch msg := m.(type) {
			case JoinHost:
				l.hosts[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.sess.View()

			case JoinDisplay:
				l.displays[msg.ClientID] = msg.Outbox
				for _, bm := range l.sess.Broadcaster().Latest() {
					msg.Outbox <- bm
				}

			case Leave:
				// dropped clients are already gone from the maps
				if ch, ok := l.hosts[msg.ClientID]; ok {
					close(ch)
					delete(l.hosts, msg.ClientID)
				}
				if ch, ok := l.displays[msg.ClientID]; ok {
					close(ch)
					delete(l.displays, msg.ClientID)
				}

			case FromHost:
				// observers push the new view to hosts on success
				err := l.sess.Apply(l.ctx, msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Code:        l.code,
					Version:     l.sess.Version(),
					NumHosts:    len(l.hosts),
					NumDisplays: len(l.displays),
					State:       l.sess.View(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) shutdown() {
	l.sess.Close()
	for id, ch := range l.hosts {
		close(ch)
		delete(l.hosts, id)
	}
	for id, ch := range l.displays {
		close(ch)
		delete(l.displays, id)
	}
	l.cancel()
	l.log.Debug("lobby closed")
}

func (l *Lobby) toHosts(v session.HostView) {
	for id, ch := range l.hosts {
		select {
		case ch <- v:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.hosts, id)
			l.log.Debug("dropped slow host", zap.String("client", id))
		}
	}
}

// toDisplays is the in-process spectator transport. It runs on the lobby
// goroutine and never blocks.
func (l *Lobby) toDisplays(_ context.Context, m broadcast.Message) error {
	for id, ch := range l.displays {
		select {
		case ch <- m:
		default:
			close(ch)
			delete(l.displays, id)
			l.log.Debug("dropped slow display", zap.String("client", id))
		}
	}
	return nil
}

func (l *Lobby) Code() string { return l.code }

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby goroutine has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }
