package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/quiz-night-backend/internal/board"
	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/session"
)

// helper: receive one host view with a timeout so tests never hang
func recvHost(t *testing.T, ch <-chan session.HostView, within time.Duration) session.HostView {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("host outbox closed unexpectedly")
		}
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for host view")
		return session.HostView{} // unreachable
	}
}

func recvMsg(t *testing.T, ch <-chan broadcast.Message, within time.Duration) broadcast.Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatalf("display outbox closed unexpectedly")
		}
		return m
	case <-time.After(within):
		t.Fatalf("timed out waiting for display message")
		return nil // unreachable
	}
}

func recvNoMsg(t *testing.T, ch <-chan broadcast.Message, within time.Duration) {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further messages possible
			return
		}
		t.Fatalf("expected no message within %v, but got: %+v", within, m)
	case <-time.After(within):
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func teams() []quiz.Team {
	return []quiz.Team{{ID: "t1", Name: "Owls"}, {ID: "t2", Name: "Foxes"}}
}

func boardDef() quiz.Definition {
	return quiz.Definition{
		Mode: quiz.ModeBoard,
		Board: &quiz.BoardGame{Categories: []quiz.Category{{ID: "c1", Name: "Films", Questions: []quiz.BoardQuestion{
			{ID: "n1", Kind: quiz.KindNormal, Answer: "Alien"},
		}}}},
		Teams: teams(),
	}
}

func roundsDef() quiz.Definition {
	return quiz.Definition{
		Mode: quiz.ModeRounds,
		Rounds: &quiz.RoundsGame{Rounds: []quiz.Round{{
			ID: "r1", Name: "Quickfire", TimeLimit: 30, Points: 1, AnswerMethod: quiz.AnswerPaper,
			Questions: []quiz.RoundQuestion{{ID: "q1", Prompt: "?", Answer: "!"}},
		}}},
		Teams: teams(),
	}
}

func newLobby(t *testing.T, cfg Config) *Lobby {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	l, err := NewLobby(ctx, cfg)
	require.NoError(t, err)
	return l
}

func TestLobby_HostCommandReachesHostsAndDisplays(t *testing.T) {
	l := newLobby(t, Config{Code: "QUIZ01", Definition: boardDef()})

	host := make(chan session.HostView, 4)
	l.Inbox() <- JoinHost{ClientID: "h1", Outbox: host}
	first := recvHost(t, host, 100*time.Millisecond)
	assert.Equal(t, 0, first.Version)

	display := make(chan broadcast.Message, 4)
	l.Inbox() <- JoinDisplay{ClientID: "d1", Outbox: display}
	initial := recvMsg(t, display, 100*time.Millisecond)
	require.IsType(t, broadcast.StateUpdate{}, initial)

	reply := make(chan error, 1)
	l.Inbox() <- FromHost{Cmd: session.Command{Type: session.CmdSelectQuestion, CategoryID: "c1", QuestionID: "n1"}, Reply: reply}
	require.NoError(t, <-reply)

	next := recvHost(t, host, 100*time.Millisecond)
	assert.Equal(t, 1, next.Version)
	require.NotNil(t, next.Board.Active)
	assert.Equal(t, "Alien", next.Board.Active.Answer)

	su, ok := recvMsg(t, display, 100*time.Millisecond).(broadcast.StateUpdate)
	require.True(t, ok)
	require.NotNil(t, su.Snapshot.Board.Active)
	assert.Empty(t, su.Snapshot.Board.Active.Answer)

	l.Inbox() <- Shutdown{}
}

func TestLobby_RejectedCommandRepliesAndSendsNothing(t *testing.T) {
	l := newLobby(t, Config{Code: "QUIZ02", Definition: boardDef()})

	display := make(chan broadcast.Message, 4)
	l.Inbox() <- JoinDisplay{ClientID: "d1", Outbox: display}
	_ = recvMsg(t, display, 100*time.Millisecond)

	reply := make(chan error, 1)
	l.Inbox() <- FromHost{Cmd: session.Command{Type: session.CmdMarkCorrect}, Reply: reply}
	assert.ErrorIs(t, <-reply, board.ErrNoActiveQuestion)
	recvNoMsg(t, display, 100*time.Millisecond)
}

func TestLobby_LeaveClosesOutboxes(t *testing.T) {
	l := newLobby(t, Config{Code: "QUIZ07", Definition: boardDef()})

	host := make(chan session.HostView, 4)
	l.Inbox() <- JoinHost{ClientID: "h1", Outbox: host}
	_ = recvHost(t, host, 100*time.Millisecond)

	display := make(chan broadcast.Message, 4)
	l.Inbox() <- JoinDisplay{ClientID: "d1", Outbox: display}
	_ = recvMsg(t, display, 100*time.Millisecond)

	l.Inbox() <- Leave{ClientID: "h1"}
	l.Inbox() <- Leave{ClientID: "d1"}
	// a second leave for the same client must not close twice
	l.Inbox() <- Leave{ClientID: "h1"}

	reply := make(chan View, 1)
	l.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	assert.Equal(t, 0, view.NumHosts)
	assert.Equal(t, 0, view.NumDisplays)

	select {
	case _, ok := <-host:
		assert.False(t, ok, "host outbox should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("host outbox still open after Leave")
	}
	select {
	case _, ok := <-display:
		assert.False(t, ok, "display outbox should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("display outbox still open after Leave")
	}

	l.Inbox() <- Shutdown{}
}

func TestLobby_DropSlowDisplay(t *testing.T) {
	l := newLobby(t, Config{Code: "QUIZ03", Definition: boardDef()})

	display := make(chan broadcast.Message, 1)
	l.Inbox() <- JoinDisplay{ClientID: "d1", Outbox: display}

	l.Inbox() <- FromHost{Cmd: session.Command{Type: session.CmdSetTheme, Theme: "neon"}}

	reply := make(chan View, 1)
	l.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	assert.Equal(t, 0, view.NumDisplays, "expected slow display to be dropped")
	assert.Equal(t, "neon", view.State.Theme)
}

func TestLobby_TicksReachDisplaysWithoutStateUpdates(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newLobby(t, Config{Code: "QUIZ04", Definition: roundsDef(), Clock: clock})

	display := make(chan broadcast.Message, 16)
	l.Inbox() <- JoinDisplay{ClientID: "d1", Outbox: display}
	_ = recvMsg(t, display, 100*time.Millisecond)

	l.Inbox() <- FromHost{Cmd: session.Command{Type: session.CmdStartRound}}
	require.IsType(t, broadcast.StateUpdate{}, recvMsg(t, display, 100*time.Millisecond))
	start, ok := recvMsg(t, display, 100*time.Millisecond).(broadcast.TimerUpdate)
	require.True(t, ok)
	assert.Equal(t, 30, start.Time)

	for want := 29; want >= 27; want-- {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		cancel()
		clock.Advance(time.Second)

		tu, ok := recvMsg(t, display, 500*time.Millisecond).(broadcast.TimerUpdate)
		require.True(t, ok, "ticks must only use the timer channel")
		assert.Equal(t, want, tu.Time)
		assert.True(t, tu.TimerOn)
	}
}

func TestLobby_LateDisplayGetsLatestStateAndTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newLobby(t, Config{Code: "QUIZ05", Definition: roundsDef(), Clock: clock})

	reply := make(chan error, 1)
	l.Inbox() <- FromHost{Cmd: session.Command{Type: session.CmdStartRound}, Reply: reply}
	require.NoError(t, <-reply)

	display := make(chan broadcast.Message, 4)
	l.Inbox() <- JoinDisplay{ClientID: "late", Outbox: display}

	su, ok := recvMsg(t, display, 100*time.Millisecond).(broadcast.StateUpdate)
	require.True(t, ok)
	assert.Equal(t, "questions", string(su.Snapshot.Rounds.Phase))
	tu, ok := recvMsg(t, display, 100*time.Millisecond).(broadcast.TimerUpdate)
	require.True(t, ok)
	assert.Equal(t, 30, tu.TimeLimit)
}

func TestLobby_Shutdown_StopsTimerAndClosesOutboxes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newLobby(t, Config{Code: "QUIZ06", Definition: roundsDef(), Clock: clock})

	display := make(chan broadcast.Message, 8)
	l.Inbox() <- JoinDisplay{ClientID: "d1", Outbox: display}
	l.Inbox() <- FromHost{Cmd: session.Command{Type: session.CmdStartRound}}
	l.Inbox() <- Shutdown{}

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatalf("lobby did not stop")
	}

	clock.Advance(5 * time.Second)
	// drain what was sent before shutdown; the channel must end closed
	for {
		select {
		case _, ok := <-display:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("display outbox never closed")
		}
	}
}
