package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/board"
	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/rounds"
	"github.com/DoyleJ11/quiz-night-backend/internal/timer"
)

var ErrUnknownCommand = errors.New("unknown command")
var ErrWrongMode = errors.New("command not available in this mode")
var ErrNoGame = errors.New("definition has no game for its mode")
var ErrInvalidSeconds = errors.New("timer limit must be positive")

// HostView is the unredacted state handed to observers.
type HostView struct {
	Version    int          `json:"version"`
	Name       string       `json:"name"`
	Mode       quiz.Mode    `json:"mode"`
	Theme      string       `json:"theme"`
	Board      *board.View  `json:"board,omitempty"`
	Rounds     *rounds.View `json:"rounds,omitempty"`
	Timer      timer.Tick   `json:"timer"`
	MediaError string       `json:"mediaError,omitempty"`
}

type Observer func(HostView)

type Option func(*Session)

func WithClock(c clockwork.Clock) Option { return func(s *Session) { s.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// WithTransport sets where spectator messages go.
func WithTransport(t broadcast.Transport) Option { return func(s *Session) { s.transport = t } }

// WithAutoAdvance moves to the next question when a rounds countdown hits zero.
func WithAutoAdvance(on bool) Option { return func(s *Session) { s.autoAdvance = on } }

func WithTheme(name string) Option { return func(s *Session) { s.theme = name } }

// Session is one running quiz. It is not safe for concurrent use; the
// lobby actor serialises every call.
type Session struct {
	def         quiz.Definition
	clock       clockwork.Clock
	log         *zap.Logger
	transport   broadcast.Transport
	autoAdvance bool

	timer  *timer.Timer
	bc     *broadcast.Broadcaster
	board  *board.Machine
	rounds *rounds.Machine

	theme      string
	initTheme  string
	version    int
	mediaError string
	lastTick   timer.Tick

	observers map[int]Observer
	nextObs   int
}

func New(def quiz.Definition, opts ...Option) (*Session, error) {
	s := &Session{def: def, observers: map[int]Observer{}}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.initTheme = s.theme
	s.timer = timer.New(s.clock)
	s.bc = broadcast.NewBroadcaster(s.transport, s.log)

	switch def.Mode {
	case quiz.ModeBoard:
		if def.Board == nil {
			return nil, ErrNoGame
		}
		s.board = board.New(*def.Board, def.Teams)
	case quiz.ModeRounds:
		if def.Rounds == nil {
			return nil, ErrNoGame
		}
		s.rounds = rounds.New(*def.Rounds, def.Teams, s.timer)
	default:
		return nil, fmt.Errorf("%w: mode %q", ErrNoGame, def.Mode)
	}
	return s, nil
}

func (s *Session) Mode() quiz.Mode { return s.def.Mode }
func (s *Session) Version() int { return s.version }

// Ticks is the timer's tick stream; feed every value back into HandleTick.
func (s *Session) Ticks() <-chan timer.Tick { return s.timer.Ticks() }

// Broadcaster exposes the latest spectator messages for late joiners.
func (s *Session) Broadcaster() *broadcast.Broadcaster { return s.bc }

// Subscribe registers an observer called after every accepted change.
func (s *Session) Subscribe(o Observer) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() { delete(s.observers, id) }
}

// Sync publishes the current state without a command, for the first
// spectator frame.
func (s *Session) Sync(ctx context.Context) {
	s.bc.Publish(ctx, broadcast.Redact(s.state()))
}

func (s *Session) View() HostView {
	st := s.state()
	return HostView{
		Version:    s.version,
		Name:       s.def.Name,
		Mode:       st.Mode,
		Theme:      st.Theme,
		Board:      st.Board,
		Rounds:     st.Rounds,
		Timer:      st.Timer,
		MediaError: s.mediaError,
	}
}

// Apply runs a host command. A rejected command leaves the session as it
// was and its error is only informational.
func (s *Session) Apply(ctx context.Context, cmd Command) error {
	video, err := s.apply(cmd)
	if err != nil {
		s.log.Debug("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
		return err
	}

	d := s.bc.Publish(ctx, broadcast.Redact(s.state()))
	if d == broadcast.Structural && cmd.Type != CmdMediaError {
		s.mediaError = ""
	}
	s.syncTimer(ctx)
	if video != nil {
		s.bc.Media(ctx, *video)
	}

	s.version++
	s.notify()
	return nil
}

// HandleTick forwards a timer tick. Ticks from a superseded countdown are
// dropped.
func (s *Session) HandleTick(ctx context.Context, t timer.Tick) {
	if t.Gen != s.timer.Gen() {
		return
	}
	s.lastTick = stripGen(t)
	s.bc.Tick(ctx, broadcast.NewTimerUpdate(t))
	s.notify()

	if s.autoAdvance && t.Remaining == 0 && !t.Running &&
		s.rounds != nil && s.rounds.Phase() == rounds.PhaseQuestions {
		_ = s.Apply(ctx, Command{Type: CmdNextQuestion})
	}
}

// Close ends the session and stops its countdown.
func (s *Session) Close() {
	s.timer.Stop()
	for id := range s.observers {
		delete(s.observers, id)
	}
}

func (s *Session) state() broadcast.State {
	st := broadcast.State{Mode: s.def.Mode, Theme: s.theme, Timer: s.timer.State()}
	if s.board != nil {
		v := s.board.View()
		st.Board = &v
	}
	if s.rounds != nil {
		v := s.rounds.View()
		st.Rounds = &v
	}
	return st
}

func (s *Session) syncTimer(ctx context.Context) {
	t := stripGen(s.timer.State())
	if t == s.lastTick {
		return
	}
	s.lastTick = t
	s.bc.Tick(ctx, broadcast.NewTimerUpdate(t))
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	v := s.View()
	for _, o := range s.observers {
		o(v)
	}
}

func stripGen(t timer.Tick) timer.Tick {
	t.Gen = 0
	return t
}
