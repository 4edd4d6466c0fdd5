package board

import (
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
	"github.com/DoyleJ11/quiz-night-backend/internal/scoring"
)

// View is the full host-side picture of the board, answers included.
type View struct {
	Phase           Phase           `json:"phase"`
	Categories      []quiz.Category `json:"categories"`
	Teams           []quiz.Team     `json:"teams"`
	Active          *ActiveView     `json:"active,omitempty"`
	AllTeamsBlocked bool            `json:"allTeamsBlocked"`
}

type ActiveView struct {
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

func (m *Machine) View() View {
	g := m.game.Clone()
	v := View{
		Phase:           m.phase,
		Categories:      g.Categories,
		Teams:           m.Teams(),
		AllTeamsBlocked: m.AllTeamsBlocked(),
	}
	if m.active == nil {
		return v
	}

	a := m.active
	av := &ActiveView{
		CategoryID:      a.CategoryID,
		QuestionID:      a.QuestionID,
		Kind:            a.Kind,
		Responding:      a.Responding,
		Blocked:         []quiz.TeamID{},
		WagerAmount:     a.WagerAmount,
		BlindPickTarget: a.BlindPickTarget,
		IsPlaying:       a.IsPlaying,
		MediaTime:       a.MediaTime,
	}
	if q := m.question(a.CategoryID, a.QuestionID); q != nil {
		av.Prompt = q.Prompt
		av.Answer = q.Answer
		if q.Media != nil {
			mc := *q.Media
			av.Media = &mc
		}
	}
	// team order keeps the output stable
	for _, t := range m.teams {
		if a.Blocked[t.ID] {
			av.Blocked = append(av.Blocked, t.ID)
		}
	}
	if len(a.AuctionBids) > 0 {
		av.AuctionBids = make(map[quiz.TeamID]int, len(a.AuctionBids))
		for id, bid := range a.AuctionBids {
			av.AuctionBids[id] = bid
		}
		av.AuctionWinner, _, _ = scoring.AuctionWinner(a.AuctionBids, quiz.TeamOrder(m.teams))
	}
	v.Active = av
	return v
}
