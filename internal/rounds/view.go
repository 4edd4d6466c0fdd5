package rounds

import (
	"sort"

	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

type Standing struct {
	Team        quiz.TeamID `json:"teamId"`
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	RoundScores []int       `json:"roundScores"`
	Total       int         `json:"total"`
	Rank        int         `json:"rank"`
}

// View is the host-side picture of a rounds game, answers included.
type View struct {
	Phase         Phase       `json:"phase"`
	RoundIndex    int         `json:"roundIndex"`
	RoundCount    int         `json:"roundCount"`
	QuestionIndex int         `json:"qIdx"`
	AnswerIndex   int         `json:"aIdx"`
	Round         quiz.Round  `json:"round"`
	Teams         []quiz.Team `json:"teams"`
	Standings     []Standing  `json:"standings"`
}

func (m *Machine) View() View {
	r := m.CurrentRound()
	r.Questions = append([]quiz.RoundQuestion(nil), r.Questions...)

	return View{
		Phase:         m.phase,
		RoundIndex:    m.round,
		RoundCount:    len(m.game.Rounds),
		QuestionIndex: m.q,
		AnswerIndex:   m.a,
		Round:         r,
		Teams:         m.Teams(),
		Standings:     m.Standings(),
	}
}

// Standings orders teams by total, highest first. Equal totals share a rank
// and keep team order.
func (m *Machine) Standings() []Standing {
	out := make([]Standing, len(m.teams))
	for i, t := range m.teams {
		s := Standing{
			Team:        t.ID,
			Name:        t.Name,
			Color:       t.Color,
			RoundScores: make([]int, len(m.game.Rounds)),
		}
		for r := range m.game.Rounds {
			s.RoundScores[r] = m.RoundScore(t.ID, r)
			s.Total += s.RoundScores[r]
		}
		out[i] = s
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	for i := range out {
		if i > 0 && out[i].Total == out[i-1].Total {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}
