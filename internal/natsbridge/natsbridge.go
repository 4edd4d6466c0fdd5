// Package natsbridge mirrors spectator messages onto NATS so displays on
// other machines can follow a session without a websocket to this server.
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
)

const subjectRoot = "quiz"

// Subject is quiz.<code>.<channel>.
func Subject(code string, ch broadcast.Channel) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, code, ch)
}

// Wildcard matches every channel of one session.
func Wildcard(code string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, code)
}

// Publisher is the part of *nats.Conn the transport needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Transport publishes each message on its channel subject. Core NATS is
// at-most-once, which is all the spectator protocol asks for.
type Transport struct {
	pub  Publisher
	code string
}

func NewTransport(pub Publisher, code string) *Transport {
	return &Transport{pub: pub, code: code}
}

func (t *Transport) Send(_ context.Context, msg broadcast.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return t.pub.Publish(Subject(t.code, msg.Channel()), data)
}

// Connect dials NATS with reconnects and logs connection changes.
func Connect(url string, log *zap.Logger) (*nats.Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := []nats.Option{
		nats.Name("quiz-night"),
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error("NATS error", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Watch feeds every message of a session into h until ctx ends.
func Watch(ctx context.Context, nc *nats.Conn, code string, h func([]byte) error) error {
	ch := make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(Wildcard(code), ch)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-ch:
			if err := h(m.Data); err != nil {
				return err
			}
		}
	}
}
