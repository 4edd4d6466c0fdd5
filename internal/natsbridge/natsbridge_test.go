package natsbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
)

type published struct {
	subj string
	data []byte
}

type fakePublisher struct {
	got []published
	err error
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	f.got = append(f.got, published{subj, data})
	return f.err
}

func TestTransport_PublishesPerChannel(t *testing.T) {
	pub := &fakePublisher{}
	tr := NewTransport(pub, "ABC123")
	ctx := context.Background()

	require.NoError(t, tr.Send(ctx, broadcast.TimerUpdate{Type: broadcast.TypeTimer, Time: 5, TimerOn: true, TimeLimit: 30}))
	require.NoError(t, tr.Send(ctx, broadcast.VideoCommand{Type: broadcast.TypeVideo, Action: broadcast.VideoPause}))

	require.Len(t, pub.got, 2)
	assert.Equal(t, "quiz.ABC123.timer", pub.got[0].subj)
	assert.JSONEq(t, `{"type":"timer","time":5,"timerOn":true,"timeLimit":30}`, string(pub.got[0].data))
	assert.Equal(t, "quiz.ABC123.video", pub.got[1].subj)

	msg, err := broadcast.Decode(pub.got[1].data)
	require.NoError(t, err)
	assert.Equal(t, broadcast.VideoPause, msg.(broadcast.VideoCommand).Action)
}

func TestTransport_ErrorsSurfaceToBroadcaster(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	tr := NewTransport(pub, "ABC123")
	assert.Error(t, tr.Send(context.Background(), broadcast.TimerUpdate{}))

	// the broadcaster swallows them
	b := broadcast.NewBroadcaster(tr, nil)
	b.Tick(context.Background(), broadcast.TimerUpdate{Type: broadcast.TypeTimer})
	assert.Len(t, pub.got, 2)
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "quiz.XYZ.state", Subject("XYZ", broadcast.ChannelState))
	assert.Equal(t, "quiz.XYZ.>", Wildcard("XYZ"))
}
