package rounds

import (
	"errors"

	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/scoring"
)

var ErrWrongPhase = errors.New("command not valid in this phase")
var ErrOutOfRange = errors.New("index out of range")
var ErrUnknownTeam = errors.New("unknown team")
var ErrNoRounds = errors.New("game has no rounds")

type Phase string

const (
	PhaseRoundIntro    Phase = "round-intro"
	PhaseQuestions     Phase = "questions"
	PhaseCollectBlanks Phase = "collect-blanks"
	PhaseShowAnswers   Phase = "show-answers"
	PhaseBreak         Phase = "break"
	PhaseStandings     Phase = "standings"
	PhaseGameEnd       Phase = "game-end"
)

// Countdown is the slice of the timer service the machine drives.
type Countdown interface {
	Start(limitSeconds int)
	Stop()
	Resume()
	Reset()
}

type scoreKey struct {
	team  quiz.TeamID
	round int
}

type markKey struct {
	team     quiz.TeamID
	round    int
	question int
}

type Machine struct {
	game  quiz.RoundsGame
	teams []quiz.Team
	timer Countdown

	phase Phase
	round int
	q     int
	a     int

	manual map[scoreKey]int
	marks  map[markKey]bool
}

func New(game quiz.RoundsGame, teams []quiz.Team, timer Countdown) *Machine {
	m := &Machine{
		game:  game,
		teams: append([]quiz.Team(nil), teams...),
		timer: timer,
	}
	m.Reset()
	return m
}

// Reset is the only way out of GameEnd.
func (m *Machine) Reset() {
	if m.timer != nil {
		m.timer.Reset()
	}
	m.phase = PhaseRoundIntro
	m.round, m.q, m.a = 0, 0, 0
	m.manual = map[scoreKey]int{}
	m.marks = map[markKey]bool{}
}

func (m *Machine) Phase() Phase { return m.phase }
func (m *Machine) RoundIndex() int { return m.round }
func (m *Machine) QuestionIndex() int { return m.q }
func (m *Machine) AnswerIndex() int { return m.a }
func (m *Machine) Teams() []quiz.Team { return append([]quiz.Team(nil), m.teams...) }
func (m *Machine) RoundCount() int { return len(m.game.Rounds) }
func (m *Machine) CurrentRound() quiz.Round {
	if m.round < 0 || m.round >= len(m.game.Rounds) {
		return quiz.Round{}
	}
	return m.game.Rounds[m.round]
}

func (m *Machine) StartRound() error {
	if m.phase != PhaseRoundIntro {
		return ErrWrongPhase
	}
	if len(m.game.Rounds) == 0 {
		return ErrNoRounds
	}
	m.stopTimer()
	m.q, m.a = 0, 0
	if len(m.CurrentRound().Questions) == 0 {
		m.afterQuestions()
		return nil
	}
	m.phase = PhaseQuestions
	m.startTimer()
	return nil
}

func (m *Machine) NextQuestion() error {
	if m.phase != PhaseQuestions {
		return ErrWrongPhase
	}
	if m.q < len(m.CurrentRound().Questions)-1 {
		m.q++
		m.startTimer()
		return nil
	}
	m.stopTimer()
	m.afterQuestions()
	return nil
}

func (m *Machine) PrevQuestion() error {
	if m.phase != PhaseQuestions {
		return ErrWrongPhase
	}
	if m.q == 0 {
		return ErrOutOfRange
	}
	m.q--
	m.startTimer()
	return nil
}

// StartAnswers ends blank collection.
func (m *Machine) StartAnswers() error {
	if m.phase != PhaseCollectBlanks {
		return ErrWrongPhase
	}
	m.enterAnswers()
	return nil
}

func (m *Machine) NextAnswer() error {
	if m.phase != PhaseShowAnswers {
		return ErrWrongPhase
	}
	if m.a < len(m.CurrentRound().Questions)-1 {
		m.a++
		return nil
	}
	m.afterAnswers()
	return nil
}

func (m *Machine) PrevAnswer() error {
	if m.phase != PhaseShowAnswers {
		return ErrWrongPhase
	}
	if m.a == 0 {
		return ErrOutOfRange
	}
	m.a--
	return nil
}

func (m *Machine) StartBreak() error {
	if m.phase != PhaseStandings {
		return ErrWrongPhase
	}
	m.phase = PhaseBreak
	return nil
}

func (m *Machine) ShowStandings() error {
	if m.phase != PhaseBreak {
		return ErrWrongPhase
	}
	m.phase = PhaseStandings
	return nil
}

func (m *Machine) NextRound() error {
	if m.phase != PhaseBreak && m.phase != PhaseStandings {
		return ErrWrongPhase
	}
	m.advanceRound()
	return nil
}

// Timer controls only make sense while questions are on screen.
func (m *Machine) StartTimer(limitSeconds int) error {
	if m.phase != PhaseQuestions || m.timer == nil {
		return ErrWrongPhase
	}
	if limitSeconds <= 0 {
		limitSeconds = m.CurrentRound().TimeLimitFor(m.q)
	}
	m.timer.Stop()
	m.timer.Start(limitSeconds)
	return nil
}

func (m *Machine) StopTimer() error {
	if m.phase != PhaseQuestions || m.timer == nil {
		return ErrWrongPhase
	}
	m.timer.Stop()
	return nil
}

// ResumeTimer continues a stopped countdown without refilling it.
func (m *Machine) ResumeTimer() error {
	if m.phase != PhaseQuestions || m.timer == nil {
		return ErrWrongPhase
	}
	m.timer.Resume()
	return nil
}

func (m *Machine) ResetTimer() error {
	if m.phase != PhaseQuestions || m.timer == nil {
		return ErrWrongPhase
	}
	m.timer.Reset()
	return nil
}

// SetRoundScore records a manually tallied score and overrides any marks.
func (m *Machine) SetRoundScore(team quiz.TeamID, round, points int) error {
	if quiz.IndexOfTeam(m.teams, team) < 0 {
		return ErrUnknownTeam
	}
	if round < 0 || round >= len(m.game.Rounds) {
		return ErrOutOfRange
	}
	m.manual[scoreKey{team, round}] = points
	return nil
}

// AdjustScore nudges the current round's score for a team.
func (m *Machine) AdjustScore(team quiz.TeamID, delta int) error {
	if quiz.IndexOfTeam(m.teams, team) < 0 {
		return ErrUnknownTeam
	}
	if len(m.game.Rounds) == 0 {
		return ErrNoRounds
	}
	r := m.round
	if r >= len(m.game.Rounds) {
		r = len(m.game.Rounds) - 1
	}
	m.manual[scoreKey{team, r}] = m.RoundScore(team, r) + delta
	return nil
}

// TallyAnswer records a digital mark for a question of the current round.
func (m *Machine) TallyAnswer(team quiz.TeamID, question int, correct bool) error {
	if quiz.IndexOfTeam(m.teams, team) < 0 {
		return ErrUnknownTeam
	}
	if question < 0 || question >= len(m.CurrentRound().Questions) {
		return ErrOutOfRange
	}
	m.marks[markKey{team, m.round, question}] = correct
	return nil
}

func (m *Machine) RoundScore(team quiz.TeamID, round int) int {
	if v, ok := m.manual[scoreKey{team, round}]; ok {
		return v
	}
	if round < 0 || round >= len(m.game.Rounds) {
		return 0
	}
	r := m.game.Rounds[round]
	total := 0
	for i := range r.Questions {
		if correct, ok := m.marks[markKey{team, round, i}]; ok {
			total += scoring.RoundAward(r.PointsFor(i), correct)
		}
	}
	return total
}

func (m *Machine) Total(team quiz.TeamID) int {
	total := 0
	for r := range m.game.Rounds {
		total += m.RoundScore(team, r)
	}
	return total
}

func (m *Machine) afterQuestions() {
	if m.CurrentRound().AnswerMethod == quiz.AnswerPaper {
		m.phase = PhaseCollectBlanks
		return
	}
	m.enterAnswers()
}

func (m *Machine) enterAnswers() {
	m.a = 0
	if !m.CurrentRound().ShowAnswers || len(m.CurrentRound().Questions) == 0 {
		m.afterAnswers()
		return
	}
	m.phase = PhaseShowAnswers
}

func (m *Machine) afterAnswers() {
	r := m.CurrentRound()
	switch {
	case r.Break:
		m.phase = PhaseBreak
	case r.Standings:
		m.phase = PhaseStandings
	default:
		m.advanceRound()
	}
}

func (m *Machine) advanceRound() {
	m.stopTimer()
	if m.round >= len(m.game.Rounds)-1 {
		m.phase = PhaseGameEnd
		return
	}
	m.round++
	m.q, m.a = 0, 0
	m.phase = PhaseRoundIntro
}

func (m *Machine) startTimer() {
	if m.timer == nil {
		return
	}
	m.timer.Stop()
	m.timer.Start(m.CurrentRound().TimeLimitFor(m.q))
}

func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
	}
}
