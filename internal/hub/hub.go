package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

var ErrCodeInUse = errors.New("session code already in use")

type HubMsg interface{ isHubMsg() }

type Created struct {
	Lobby *lobby.Lobby
	Err   error
}

type CreateLobby struct {
	Code       string
	Definition quiz.Definition
	Theme      string
	Reply      chan Created
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type ListLobbies struct {
	Reply chan []string
}

// RemoveLobby shuts the lobby down and forgets its code.
type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (ListLobbies) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// Options are applied to every lobby the hub creates.
type Options struct {
	AutoAdvance bool
	// Mirror, when set, returns an extra spectator transport for a code.
	Mirror func(code string) broadcast.Transport
	Logger *zap.Logger
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	opts    Options
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		opts:    opts,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if h.lobbies[msg.Code] != nil {
					msg.Reply <- Created{Err: ErrCodeInUse}
					break
				}
				lb, err := h.create(msg)
				if err != nil {
					msg.Reply <- Created{Err: err}
					break
				}
				h.lobbies[msg.Code] = lb
				h.log.Info("session created", zap.String("code", msg.Code), zap.String("mode", string(msg.Definition.Mode)))
				msg.Reply <- Created{Lobby: lb}

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case ListLobbies:
				codes := make([]string, 0, len(h.lobbies))
				for code := range h.lobbies {
					codes = append(codes, code)
				}
				msg.Reply <- codes

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
					delete(h.lobbies, msg.Code)
				}

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) create(msg CreateLobby) (*lobby.Lobby, error) {
	cfg := lobby.Config{
		Code:        msg.Code,
		Definition:  msg.Definition,
		Theme:       msg.Theme,
		AutoAdvance: h.opts.AutoAdvance,
		Logger:      h.log,
	}
	if h.opts.Mirror != nil {
		cfg.Mirror = h.opts.Mirror(msg.Code)
	}
	return lobby.NewLobby(h.ctx, cfg)
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		// a lobby whose loop already exited is left to its context
		select {
		case lb.Inbox() <- lobby.Shutdown{}:
		default:
		}
	}
	clear(h.lobbies)
}
