package broadcast

import (
	"fmt"

	"github.com/DoyleJ11/quiz-night-backend/internal/board"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/rounds"
	"github.com/DoyleJ11/quiz-night-backend/internal/timer"
)

// State is everything the host sees. Only one of Board/Rounds is set.
type State struct {
	Mode   quiz.Mode
	Theme  string
	Board  *board.View
	Rounds *rounds.View
	Timer  timer.Tick
}

// Snapshot is the spectator-safe projection of State.
type Snapshot struct {
	Mode   quiz.Mode       `json:"mode"`
	Theme  string          `json:"theme"`
	Teams  []TeamScore     `json:"teams"`
	Board  *BoardSnapshot  `json:"board,omitempty"`
	Rounds *RoundsSnapshot `json:"rounds,omitempty"`
	Timer  TimerUpdate     `json:"timer"`
}

type TeamScore struct {
	ID    quiz.TeamID `json:"id"`
	Name  string      `json:"name"`
	Color string      `json:"color"`
	Score int         `json:"score"`
}

type BoardSnapshot struct {
	Phase           board.Phase      `json:"phase"`
	Categories      []PublicCategory `json:"categories"`
	Active          *PublicActive    `json:"active,omitempty"`
	AllTeamsBlocked bool             `json:"allTeamsBlocked"`
}

type PublicCategory struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Questions []PublicBoardQuestion `json:"questions"`
}

// PublicBoardQuestion keeps the answer field so displays can rely on its
// presence; it is always empty.
type PublicBoardQuestion struct {
	ID         string            `json:"id"`
	Kind       quiz.QuestionKind `json:"kind"`
	Answer     string            `json:"answer"`
	Played     bool              `json:"played"`
	AnsweredBy quiz.TeamID       `json:"answeredBy,omitempty"`
}

type PublicActive struct {
	CategoryID      string              `json:"categoryId"`
	QuestionID      string              `json:"questionId"`
	Kind            quiz.QuestionKind   `json:"kind"`
	Prompt          string              `json:"prompt,omitempty"`
	Answer          string              `json:"answer"`
	Media           *quiz.Media         `json:"media,omitempty"`
	Responding      quiz.TeamID         `json:"respondingTeamId,omitempty"`
	Blocked         []quiz.TeamID       `json:"blockedTeamIds"`
	WagerAmount     int                 `json:"wagerAmount,omitempty"`
	AuctionBids     map[quiz.TeamID]int `json:"auctionBids,omitempty"`
	AuctionWinner   quiz.TeamID         `json:"auctionWinner,omitempty"`
	BlindPickTarget quiz.TeamID         `json:"blindPickTargetTeamId,omitempty"`
	IsPlaying       bool                `json:"isPlaying"`
	MediaTime       float64             `json:"currentMediaTime"`
}

type RoundsSnapshot struct {
	Phase         rounds.Phase         `json:"phase"`
	RoundIndex    int                  `json:"roundIndex"`
	RoundCount    int                  `json:"roundCount"`
	RoundName     string               `json:"roundName"`
	RoundType     quiz.RoundType       `json:"roundType"`
	QuestionIndex int                  `json:"qIdx"`
	AnswerIndex   int                  `json:"aIdx"`
	QuestionCount int                  `json:"questionCount"`
	Question      *PublicRoundQuestion `json:"question,omitempty"`
	Reveal        *Reveal              `json:"reveal,omitempty"`
	Standings     []rounds.Standing    `json:"standings"`
}

type PublicRoundQuestion struct {
	Index   int         `json:"index"`
	Prompt  string      `json:"prompt"`
	Points  int         `json:"points"`
	Media   *quiz.Media `json:"media,omitempty"`
	Choices []string    `json:"choices,omitempty"`
}

type Reveal struct {
	Index        int    `json:"index"`
	Answer       string `json:"answer"`
	CorrectIndex *int   `json:"correctIndex,omitempty"`
}

// Redact builds the public snapshot. Board answers are never included;
// rounds answers only for the question at the answer index while answers
// are being shown.
func Redact(s State) Snapshot {
	snap := Snapshot{
		Mode:  s.Mode,
		Theme: s.Theme,
		Teams: []TeamScore{},
		Timer: NewTimerUpdate(s.Timer),
	}

	switch {
	case s.Board != nil:
		for _, t := range s.Board.Teams {
			snap.Teams = append(snap.Teams, TeamScore{ID: t.ID, Name: t.Name, Color: t.Color, Score: t.Score})
		}
		snap.Board = redactBoard(*s.Board)
	case s.Rounds != nil:
		for _, st := range s.Rounds.Standings {
			snap.Teams = append(snap.Teams, TeamScore{ID: st.Team, Name: st.Name, Color: st.Color, Score: st.Total})
		}
		snap.Rounds = redactRounds(*s.Rounds)
	}
	return snap
}

func redactBoard(v board.View) *BoardSnapshot {
	out := &BoardSnapshot{
		Phase:           v.Phase,
		Categories:      make([]PublicCategory, 0, len(v.Categories)),
		AllTeamsBlocked: v.AllTeamsBlocked,
	}
	for _, c := range v.Categories {
		pc := PublicCategory{ID: c.ID, Name: c.Name, Questions: make([]PublicBoardQuestion, 0, len(c.Questions))}
		for _, q := range c.Questions {
			pc.Questions = append(pc.Questions, PublicBoardQuestion{
				ID:         q.ID,
				Kind:       q.Kind,
				Played:     q.Played,
				AnsweredBy: q.AnsweredBy,
			})
		}
		out.Categories = append(out.Categories, pc)
	}

	if a := v.Active; a != nil {
		out.Active = &PublicActive{
			CategoryID:      a.CategoryID,
			QuestionID:      a.QuestionID,
			Kind:            a.Kind,
			Prompt:          a.Prompt,
			Media:           a.Media,
			Responding:      a.Responding,
			Blocked:         append([]quiz.TeamID{}, a.Blocked...),
			WagerAmount:     a.WagerAmount,
			AuctionBids:     a.AuctionBids,
			AuctionWinner:   a.AuctionWinner,
			BlindPickTarget: a.BlindPickTarget,
			IsPlaying:       a.IsPlaying,
			MediaTime:       a.MediaTime,
		}
	}
	return out
}

func redactRounds(v rounds.View) *RoundsSnapshot {
	out := &RoundsSnapshot{
		Phase:         v.Phase,
		RoundIndex:    v.RoundIndex,
		RoundCount:    v.RoundCount,
		RoundName:     v.Round.Name,
		RoundType:     v.Round.Type,
		QuestionIndex: v.QuestionIndex,
		AnswerIndex:   v.AnswerIndex,
		QuestionCount: len(v.Round.Questions),
		Standings:     append([]rounds.Standing{}, v.Standings...),
	}

	switch v.Phase {
	case rounds.PhaseQuestions:
		out.Question = publicQuestion(v.Round, v.QuestionIndex)
	case rounds.PhaseShowAnswers:
		out.Question = publicQuestion(v.Round, v.AnswerIndex)
		if i := v.AnswerIndex; i >= 0 && i < len(v.Round.Questions) {
			q := v.Round.Questions[i]
			out.Reveal = &Reveal{Index: i, Answer: q.Answer}
			if len(q.Choices) > 0 {
				ci := q.CorrectIndex
				out.Reveal.CorrectIndex = &ci
			}
		}
	}
	return out
}

func publicQuestion(r quiz.Round, i int) *PublicRoundQuestion {
	if i < 0 || i >= len(r.Questions) {
		return nil
	}
	q := r.Questions[i]
	return &PublicRoundQuestion{
		Index:   i,
		Prompt:  q.Prompt,
		Points:  r.PointsFor(i),
		Media:   q.Media,
		Choices: append([]string(nil), q.Choices...),
	}
}

// Key is the structural fingerprint of a snapshot. Two snapshots with the
// same key show the same screen with the same media; anything else about
// them can be patched in place.
type Key struct {
	Mode     quiz.Mode
	Phase    string
	Round    int
	Question int
	Answer   int
	Active   string
	Theme    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d|%d|%d|%s|%s", k.Mode, k.Phase, k.Round, k.Question, k.Answer, k.Active, k.Theme)
}

// Key derives the structural key. Board sub-phases (wager, bidding,
// responding) stay on the same screen, so the board contributes only
// whether a question is open and which one.
func (s Snapshot) Key() Key {
	k := Key{Mode: s.Mode, Theme: s.Theme}
	switch {
	case s.Board != nil:
		k.Phase = "board"
		if a := s.Board.Active; a != nil {
			k.Phase = "question"
			k.Active = a.CategoryID + "/" + a.QuestionID
		}
	case s.Rounds != nil:
		k.Phase = string(s.Rounds.Phase)
		k.Round = s.Rounds.RoundIndex
		k.Question = s.Rounds.QuestionIndex
		k.Answer = s.Rounds.AnswerIndex
	}
	return k
}
