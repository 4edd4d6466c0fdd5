package scoring

import (
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

const (
	NormalAward    = 1
	BlindPickAward = 2
	MinWager       = 1
	MaxWager       = 3
	MinBid         = 0
	MaxBid         = 5
)

type Outcome string

const (
	Correct   Outcome = "correct"
	Incorrect Outcome = "incorrect"
)

// Play carries the type-specific setup of the question being resolved.
type Play interface{ isPlay() }

type Normal struct{}

type Perform struct{}

type Wager struct {
	Amount int
}

type Auction struct {
	Bids  map[quiz.TeamID]int
	Order []quiz.TeamID // tie-break order
}

type BlindPick struct {
	Target quiz.TeamID
}

func (Normal) isPlay()    {}
func (Perform) isPlay()   {}
func (Wager) isPlay()     {}
func (Auction) isPlay()   {}
func (BlindPick) isPlay() {}

type Context struct {
	Responder quiz.TeamID
	Blocked   map[quiz.TeamID]bool
}

type Delta struct {
	Team   quiz.TeamID `json:"teamId"`
	Points int         `json:"delta"`
}

type Result struct {
	Deltas []Delta
	// Target is the team the outcome is credited to.
	Target quiz.TeamID
	// Block is set on an incorrect outcome.
	Block quiz.TeamID
}

// Resolve maps a play and outcome to score deltas. ok is false when the play
// has no designated team yet (no wager, no bids, no target, no responder) or
// that team is already blocked; callers treat that as a no-op.
func Resolve(p Play, o Outcome, ctx Context) (Result, bool) {
	if o != Correct && o != Incorrect {
		return Result{}, false
	}

	var target quiz.TeamID
	var points int

	switch play := p.(type) {
	case Normal:
		target, points = ctx.Responder, NormalAward
	case Perform:
		target, points = ctx.Responder, NormalAward
	case Wager:
		if !ValidWager(play.Amount) {
			return Result{}, false
		}
		target, points = ctx.Responder, play.Amount
	case Auction:
		winner, bid, ok := AuctionWinner(play.Bids, play.Order)
		if !ok {
			return Result{}, false
		}
		target, points = winner, bid
	case BlindPick:
		target, points = play.Target, BlindPickAward
	default:
		return Result{}, false
	}

	if target == "" || ctx.Blocked[target] {
		return Result{}, false
	}

	res := Result{Target: target}
	if o == Correct {
		res.Deltas = []Delta{{Team: target, Points: points}}
		return res, true
	}

	// Normal and perform questions cost nothing on a miss.
	switch p.(type) {
	case Normal, Perform:
	default:
		res.Deltas = []Delta{{Team: target, Points: -points}}
	}
	res.Block = target
	return res, true
}

// AuctionWinner returns the highest bidder. Ties go to whichever tied team
// comes first in order; bids of zero are passes and never win.
func AuctionWinner(bids map[quiz.TeamID]int, order []quiz.TeamID) (quiz.TeamID, int, bool) {
	var winner quiz.TeamID
	best := 0
	for _, id := range order {
		if bid, ok := bids[id]; ok && bid > best {
			winner, best = id, bid
		}
	}
	return winner, best, winner != ""
}

func ValidWager(n int) bool { return n >= MinWager && n <= MaxWager }

func ValidBid(n int) bool { return n >= MinBid && n <= MaxBid }

// RoundAward is what a rounds-mode answer is worth once marked.
func RoundAward(points int, correct bool) int {
	if !correct {
		return 0
	}
	return points
}
