package board

import (
	"errors"

	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/scoring"
)

var ErrQuestionActive = errors.New("a question is already active")
var ErrNoActiveQuestion = errors.New("no active question")
var ErrUnknownQuestion = errors.New("unknown category or question")
var ErrAlreadyPlayed = errors.New("question already played")
var ErrUnknownTeam = errors.New("unknown team")
var ErrTeamBlocked = errors.New("team is blocked for this question")
var ErrNoResponder = errors.New("no responding team")
var ErrSetupIncomplete = errors.New("question setup incomplete")
var ErrWrongPhase = errors.New("command not valid in this phase")
var ErrInvalidWager = errors.New("wager out of range")
var ErrInvalidBid = errors.New("bid out of range")

type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseWagerSetup          Phase = "wager-setup"
	PhaseAuctionBidding      Phase = "auction-bidding"
	PhaseBlindPickAssignment Phase = "blind-pick-assignment"
	PhaseAwaitingResponse    Phase = "awaiting-response"
	PhaseResolving           Phase = "resolving"
)

// Active is the state of the selected question. It lives from
// SelectQuestion until the question is closed.
type Active struct {
	CategoryID      string
	QuestionID      string
	Kind            quiz.QuestionKind
	Responding      quiz.TeamID
	Blocked         map[quiz.TeamID]bool
	WagerAmount     int
	AuctionBids     map[quiz.TeamID]int
	BlindPickTarget quiz.TeamID
	IsPlaying       bool
	MediaTime       float64
}

type Machine struct {
	original quiz.BoardGame
	game     quiz.BoardGame
	teams    []quiz.Team
	startTm  []quiz.Team

	phase  Phase
	active *Active
}

func New(game quiz.BoardGame, teams []quiz.Team) *Machine {
	m := &Machine{
		original: game.Clone(),
		startTm:  append([]quiz.Team(nil), teams...),
	}
	m.Reset()
	return m
}

// Reset restores the board and scores the machine was created with.
func (m *Machine) Reset() {
	m.game = m.original.Clone()
	m.teams = append([]quiz.Team(nil), m.startTm...)
	m.phase = PhaseIdle
	m.active = nil
}

func (m *Machine) Phase() Phase { return m.phase }

func (m *Machine) Active() (Active, bool) {
	if m.active == nil {
		return Active{}, false
	}
	return *m.active, true
}

func (m *Machine) Teams() []quiz.Team {
	return append([]quiz.Team(nil), m.teams...)
}

func (m *Machine) SelectQuestion(categoryID, questionID string) error {
	if m.active != nil {
		return ErrQuestionActive
	}
	q := m.question(categoryID, questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if q.Played {
		return ErrAlreadyPlayed
	}

	m.active = &Active{
		CategoryID:  categoryID,
		QuestionID:  questionID,
		Kind:        q.Kind,
		Blocked:     map[quiz.TeamID]bool{},
		AuctionBids: map[quiz.TeamID]int{},
	}

	switch q.Kind {
	case quiz.KindWager:
		m.phase = PhaseWagerSetup
	case quiz.KindAuction:
		m.phase = PhaseAuctionBidding
	case quiz.KindBlindPick:
		m.phase = PhaseBlindPickAssignment
	default:
		m.phase = PhaseAwaitingResponse
	}
	return nil
}

func (m *Machine) SetWager(amount int) error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	if m.active.Kind != quiz.KindWager || m.phase == PhaseResolving {
		return ErrWrongPhase
	}
	if !scoring.ValidWager(amount) {
		return ErrInvalidWager
	}
	m.active.WagerAmount = amount
	m.phase = PhaseAwaitingResponse
	return nil
}

func (m *Machine) SetAuctionBid(team quiz.TeamID, amount int) error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	if m.phase != PhaseAuctionBidding {
		return ErrWrongPhase
	}
	if quiz.IndexOfTeam(m.teams, team) < 0 {
		return ErrUnknownTeam
	}
	if !scoring.ValidBid(amount) {
		return ErrInvalidBid
	}
	m.active.AuctionBids[team] = amount
	return nil
}

func (m *Machine) SetBlindPickTarget(team quiz.TeamID) error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	// the target is fixed once play starts
	if m.phase != PhaseBlindPickAssignment {
		return ErrWrongPhase
	}
	if quiz.IndexOfTeam(m.teams, team) < 0 {
		return ErrUnknownTeam
	}
	m.active.BlindPickTarget = team
	m.phase = PhaseAwaitingResponse
	return nil
}

// SetResponder hands the question to a team; an empty id takes it back.
func (m *Machine) SetResponder(team quiz.TeamID) error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	if team == "" {
		if m.phase == PhaseResolving {
			m.active.Responding = ""
			m.phase = PhaseAwaitingResponse
		}
		return nil
	}
	if quiz.IndexOfTeam(m.teams, team) < 0 {
		return ErrUnknownTeam
	}
	if m.active.Blocked[team] {
		return ErrTeamBlocked
	}

	switch m.phase {
	case PhaseAwaitingResponse, PhaseResolving:
	case PhaseAuctionBidding:
		if _, _, ok := scoring.AuctionWinner(m.active.AuctionBids, quiz.TeamOrder(m.teams)); !ok {
			return ErrSetupIncomplete
		}
	default:
		return ErrSetupIncomplete
	}

	m.active.Responding = team
	m.phase = PhaseResolving
	return nil
}

// MarkCorrect credits the question and closes it.
func (m *Machine) MarkCorrect() error {
	res, err := m.resolve(scoring.Correct)
	if err != nil {
		return err
	}
	m.apply(res.Deltas)

	q := m.question(m.active.CategoryID, m.active.QuestionID)
	q.Played = true
	q.AnsweredBy = res.Target
	m.clear()
	return nil
}

// MarkIncorrect penalises and blocks the team but leaves the question open
// for the remaining teams.
func (m *Machine) MarkIncorrect() error {
	res, err := m.resolve(scoring.Incorrect)
	if err != nil {
		return err
	}
	m.apply(res.Deltas)
	if res.Block != "" {
		m.active.Blocked[res.Block] = true
	}
	m.active.Responding = ""
	m.phase = PhaseAwaitingResponse
	return nil
}

// Close finishes the active question whether or not anyone answered it.
func (m *Machine) Close() error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	m.question(m.active.CategoryID, m.active.QuestionID).Played = true
	m.clear()
	return nil
}

// AllTeamsBlocked reports whether nobody is left to answer.
func (m *Machine) AllTeamsBlocked() bool {
	if m.active == nil || len(m.teams) == 0 {
		return false
	}
	for _, t := range m.teams {
		if !m.active.Blocked[t.ID] {
			return false
		}
	}
	return true
}

func (m *Machine) SetPlaying(playing bool) error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	m.active.IsPlaying = playing
	return nil
}

func (m *Machine) SetMediaTime(seconds float64) error {
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	if seconds < 0 {
		seconds = 0
	}
	m.active.MediaTime = seconds
	return nil
}

// AdjustScore is the host's manual correction.
func (m *Machine) AdjustScore(team quiz.TeamID, delta int) error {
	i := quiz.IndexOfTeam(m.teams, team)
	if i < 0 {
		return ErrUnknownTeam
	}
	m.teams[i].Score += delta
	return nil
}

func (m *Machine) resolve(o scoring.Outcome) (scoring.Result, error) {
	if m.active == nil {
		return scoring.Result{}, ErrNoActiveQuestion
	}
	if m.phase != PhaseResolving || m.active.Responding == "" {
		return scoring.Result{}, ErrNoResponder
	}
	res, ok := scoring.Resolve(m.play(), o, scoring.Context{
		Responder: m.active.Responding,
		Blocked:   m.active.Blocked,
	})
	if !ok {
		return scoring.Result{}, ErrSetupIncomplete
	}
	return res, nil
}

func (m *Machine) play() scoring.Play {
	a := m.active
	switch a.Kind {
	case quiz.KindWager:
		return scoring.Wager{Amount: a.WagerAmount}
	case quiz.KindAuction:
		return scoring.Auction{Bids: a.AuctionBids, Order: quiz.TeamOrder(m.teams)}
	case quiz.KindBlindPick:
		return scoring.BlindPick{Target: a.BlindPickTarget}
	case quiz.KindPerform:
		return scoring.Perform{}
	default:
		return scoring.Normal{}
	}
}

func (m *Machine) apply(deltas []scoring.Delta) {
	for _, d := range deltas {
		if i := quiz.IndexOfTeam(m.teams, d.Team); i >= 0 {
			m.teams[i].Score += d.Points
		}
	}
}

func (m *Machine) clear() {
	m.active = nil
	m.phase = PhaseIdle
}

func (m *Machine) question(categoryID, questionID string) *quiz.BoardQuestion {
	for ci := range m.game.Categories {
		c := &m.game.Categories[ci]
		if c.ID != categoryID {
			continue
		}
		for qi := range c.Questions {
			if c.Questions[qi].ID == questionID {
				return &c.Questions[qi]
			}
		}
	}
	return nil
}
