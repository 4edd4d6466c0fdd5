package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/session"
)

func boardDef() quiz.Definition {
	return quiz.Definition{
		Mode: quiz.ModeBoard,
		Board: &quiz.BoardGame{Categories: []quiz.Category{{ID: "c1", Name: "Maps", Questions: []quiz.BoardQuestion{
			{ID: "n1", Kind: quiz.KindNormal, Answer: "Lima"},
		}}}},
		Teams: []quiz.Team{{ID: "t1", Name: "Owls"}},
	}
}

func create(t *testing.T, h *Hub, code string, def quiz.Definition) Created {
	t.Helper()
	reply := make(chan Created, 1)
	h.Inbox() <- CreateLobby{Code: code, Definition: def, Reply: reply}
	select {
	case c := <-reply:
		return c
	case <-time.After(time.Second):
		t.Fatalf("timed out creating lobby")
		return Created{}
	}
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, Options{})

	c := create(t, h, "ZED123", boardDef())
	require.NoError(t, c.Err)

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- GetLobby{Code: "ZED123", Reply: reply}
	lb2 := <-reply

	if c.Lobby == nil || lb2 == nil || c.Lobby != lb2 {
		t.Fatalf("expected same lobby pointer")
	}
	assert.Equal(t, "ZED123", lb2.Code())
}

func TestHub_CreateRejectsDuplicateAndBadDefinition(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, Options{})

	require.NoError(t, create(t, h, "AAA111", boardDef()).Err)
	assert.ErrorIs(t, create(t, h, "AAA111", boardDef()).Err, ErrCodeInUse)
	assert.ErrorIs(t, create(t, h, "BBB222", quiz.Definition{Mode: quiz.ModeRounds}).Err, session.ErrNoGame)

	reply := make(chan []string, 1)
	h.Inbox() <- ListLobbies{Reply: reply}
	assert.Equal(t, []string{"AAA111"}, <-reply)
}

func TestHub_RemoveShutsLobbyDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, Options{})

	c := create(t, h, "CCC333", boardDef())
	require.NoError(t, c.Err)
	h.Inbox() <- RemoveLobby{Code: "CCC333"}

	select {
	case <-c.Lobby.Done():
	case <-time.After(time.Second):
		t.Fatalf("lobby still running after remove")
	}

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- GetLobby{Code: "CCC333", Reply: reply}
	assert.Nil(t, <-reply)
}

func TestHub_MirrorReceivesSpectatorMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan broadcast.Message, 8)
	var codes []string
	h := NewHub(ctx, Options{Mirror: func(code string) broadcast.Transport {
		codes = append(codes, code)
		return broadcast.TransportFunc(func(_ context.Context, m broadcast.Message) error {
			got <- m
			return nil
		})
	}})

	require.NoError(t, create(t, h, "DDD444", boardDef()).Err)
	assert.Equal(t, []string{"DDD444"}, codes)

	select {
	case m := <-got:
		assert.Equal(t, broadcast.ChannelState, m.Channel())
	case <-time.After(time.Second):
		t.Fatalf("mirror never saw the initial state")
	}
}
