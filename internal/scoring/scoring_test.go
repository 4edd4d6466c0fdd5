package scoring

import (
	"testing"

	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

var order = []quiz.TeamID{"t1", "t2", "t3"}

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		play      Play
		outcome   Outcome
		ctx       Context
		wantOK    bool
		wantDelta []Delta
		wantBlock quiz.TeamID
	}{
		{
			name:      "normal correct awards one",
			play:      Normal{},
			outcome:   Correct,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t1", Points: 1}},
		},
		{
			name:      "normal incorrect only blocks",
			play:      Normal{},
			outcome:   Incorrect,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantBlock: "t1",
		},
		{
			name:      "perform scores like normal",
			play:      Perform{},
			outcome:   Correct,
			ctx:       Context{Responder: "t2"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t2", Points: 1}},
		},
		{
			name:      "wager correct",
			play:      Wager{Amount: 3},
			outcome:   Correct,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t1", Points: 3}},
		},
		{
			name:      "wager incorrect loses the wager",
			play:      Wager{Amount: 2},
			outcome:   Incorrect,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t1", Points: -2}},
			wantBlock: "t1",
		},
		{
			name:    "wager not set",
			play:    Wager{},
			outcome: Correct,
			ctx:     Context{Responder: "t1"},
		},
		{
			name:      "auction credits the winner not the responder",
			play:      Auction{Bids: map[quiz.TeamID]int{"t1": 2, "t2": 5, "t3": 0}, Order: order},
			outcome:   Correct,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t2", Points: 5}},
		},
		{
			name:      "auction incorrect",
			play:      Auction{Bids: map[quiz.TeamID]int{"t1": 4}, Order: order},
			outcome:   Incorrect,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t1", Points: -4}},
			wantBlock: "t1",
		},
		{
			name:    "auction without bids",
			play:    Auction{Order: order},
			outcome: Correct,
			ctx:     Context{Responder: "t1"},
		},
		{
			name:      "blind pick credits the target",
			play:      BlindPick{Target: "t3"},
			outcome:   Incorrect,
			ctx:       Context{Responder: "t1"},
			wantOK:    true,
			wantDelta: []Delta{{Team: "t3", Points: -2}},
			wantBlock: "t3",
		},
		{
			name:    "blind pick without target",
			play:    BlindPick{},
			outcome: Correct,
			ctx:     Context{Responder: "t1"},
		},
		{
			name:    "no responder",
			play:    Normal{},
			outcome: Correct,
		},
		{
			name:    "blocked target stays ineligible",
			play:    BlindPick{Target: "t2"},
			outcome: Correct,
			ctx:     Context{Responder: "t1", Blocked: map[quiz.TeamID]bool{"t2": true}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := Resolve(tc.play, tc.outcome, tc.ctx)
			if ok != tc.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if len(res.Deltas) != len(tc.wantDelta) {
				t.Fatalf("deltas: got %+v, want %+v", res.Deltas, tc.wantDelta)
			}
			for i := range res.Deltas {
				if res.Deltas[i] != tc.wantDelta[i] {
					t.Fatalf("delta %d: got %+v, want %+v", i, res.Deltas[i], tc.wantDelta[i])
				}
			}
			if res.Block != tc.wantBlock {
				t.Fatalf("block: got %q, want %q", res.Block, tc.wantBlock)
			}
		})
	}
}

func TestAuctionWinner_TieGoesToTeamOrder(t *testing.T) {
	bids := map[quiz.TeamID]int{"t3": 4, "t2": 4, "t1": 1}

	winner, bid, ok := AuctionWinner(bids, order)
	if !ok || winner != "t2" || bid != 4 {
		t.Fatalf("got %q/%d/%v, want t2/4/true", winner, bid, ok)
	}

	// reversed order flips the tie
	winner, _, _ = AuctionWinner(bids, []quiz.TeamID{"t3", "t2", "t1"})
	if winner != "t3" {
		t.Fatalf("got %q, want t3", winner)
	}
}

func TestAuctionWinner_AllPass(t *testing.T) {
	if _, _, ok := AuctionWinner(map[quiz.TeamID]int{"t1": 0, "t2": 0}, order); ok {
		t.Fatalf("expected no winner when every bid is zero")
	}
}

func TestRoundAward(t *testing.T) {
	if got := RoundAward(2, true); got != 2 {
		t.Fatalf("correct: got %d", got)
	}
	if got := RoundAward(2, false); got != 0 {
		t.Fatalf("incorrect: got %d", got)
	}
}
