package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/hub"
	"github.com/DoyleJ11/quiz-night-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-night-backend/internal/session"
	"github.com/DoyleJ11/quiz-night-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Options configure both endpoints.
type Options struct {
	// OriginPatterns is passed to websocket.Accept; empty means same origin only.
	OriginPatterns []string
	Logger         *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// HostHandler serves /ws/host: commands in, full host views out.
func HostHandler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.logger()
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, h)
		if !ok {
			return
		}
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: opts.OriginPatterns})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.HostView, 16)
		clientID := uuid.NewString()
		log := log.With(zap.String("code", lb.Code()), zap.String("client", clientID))

		select {
		case lb.Inbox() <- lobby.JoinHost{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()
		log.Debug("host connected")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for v := range out {
				msg := types.ServerMessage{Type: "HostView", Version: v.Version, View: &v}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = wsjson.Write(ctx, conn, msg)
				cancel()
			}
			// lobby closed or dropped us
			conn.Close(websocket.StatusGoingAway, "session closed")
		}()

		// Reader loop
		for {
			var cm types.ClientMessage
			err := wsjson.Read(r.Context(), conn, &cm)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("host read failed", zap.Error(err))
				}
				return
			}

			switch cm.Type {
			case "Ping":
				reply(r.Context(), conn, types.ServerMessage{Type: "Pong", ID: cm.ID})
			case "Command":
				res := make(chan error, 1)
				select {
				case lb.Inbox() <- lobby.FromHost{Cmd: cm.Command, Reply: res}:
				case <-lb.Done():
					return
				}
				var cmdErr error
				select {
				case cmdErr = <-res:
				case <-lb.Done():
					return
				}
				if cmdErr != nil {
					reply(r.Context(), conn, types.ServerMessage{Type: "Error", ID: cm.ID, Error: cmdErr.Error()})
					continue
				}
				reply(r.Context(), conn, types.ServerMessage{Type: "Ack", ID: cm.ID})
			default:
				reply(r.Context(), conn, types.ServerMessage{Type: "Error", ID: cm.ID, Error: "unknown type"})
			}
		}
	}
}

// DisplayHandler serves /ws/display: redacted spectator messages out, nothing in.
func DisplayHandler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.logger()
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, h)
		if !ok {
			return
		}
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: opts.OriginPatterns})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan broadcast.Message, 32)
		clientID := uuid.NewString()
		select {
		case lb.Inbox() <- lobby.JoinDisplay{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()
		log.Debug("display connected", zap.String("code", lb.Code()), zap.String("client", clientID))

		// displays never talk back; CloseRead notices when they go away
		ctx := conn.CloseRead(r.Context())
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-out:
				if !ok {
					return
				}
				wctx, cancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, m)
				cancel()
				if err != nil {
					log.Debug("display write failed", zap.Error(err))
					return
				}
			}
		}
	}
}

func findLobby(w http.ResponseWriter, r *http.Request, h *hub.Hub) (*lobby.Lobby, bool) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return nil, false
	}

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	lb := <-reply
	if lb == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return lb, true
}

func reply(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = wsjson.Write(ctx, conn, msg)
}
