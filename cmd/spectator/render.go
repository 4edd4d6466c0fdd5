package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/DoyleJ11/quiz-night-backend/pkg/types"
)

// textDisplay prints the spectator view as plain lines. Render prints the
// whole screen, Refresh only the scoreline.
type textDisplay struct {
	w io.Writer
}

func (d *textDisplay) Render(s types.Snapshot) {
	fmt.Fprintf(d.w, "==== %s", strings.ToUpper(string(s.Mode)))
	if s.Theme != "" {
		fmt.Fprintf(d.w, " [%s]", s.Theme)
	}
	fmt.Fprintln(d.w, " ====")

	switch {
	case s.Board != nil:
		d.board(s.Board)
	case s.Rounds != nil:
		d.rounds(s.Rounds)
	}
	d.scores(s)
}

func (d *textDisplay) Refresh(s types.Snapshot) {
	d.scores(s)
}

func (d *textDisplay) UpdateTimer(t types.TimerUpdate) {
	state := "stopped"
	if t.TimerOn {
		state = "running"
	}
	fmt.Fprintf(d.w, "timer %d/%d %s\n", t.Time, t.TimeLimit, state)
}

func (d *textDisplay) Video(cmd types.VideoCommand) {
	if cmd.Time != nil {
		fmt.Fprintf(d.w, "video %s @%.1fs\n", cmd.Action, *cmd.Time)
		return
	}
	fmt.Fprintf(d.w, "video %s\n", cmd.Action)
}

func (d *textDisplay) board(b *types.BoardSnapshot) {
	if a := b.Active; a != nil {
		fmt.Fprintf(d.w, "%s/%s (%s)\n", a.CategoryID, a.QuestionID, a.Kind)
		if a.Prompt != "" {
			fmt.Fprintf(d.w, "  %s\n", a.Prompt)
		}
		if a.Media != nil {
			fmt.Fprintf(d.w, "  media %s\n", a.Media.Ref)
		}
		return
	}
	for _, c := range b.Categories {
		left := 0
		for _, q := range c.Questions {
			if !q.Played {
				left++
			}
		}
		fmt.Fprintf(d.w, "%-20s %d left\n", c.Name, left)
	}
}

func (d *textDisplay) rounds(r *types.RoundsSnapshot) {
	fmt.Fprintf(d.w, "round %d/%d %s (%s)\n", r.RoundIndex+1, r.RoundCount, r.RoundName, r.Phase)
	if q := r.Question; q != nil {
		fmt.Fprintf(d.w, "Q%d. %s\n", q.Index+1, q.Prompt)
		for i, c := range q.Choices {
			fmt.Fprintf(d.w, "  %c) %s\n", 'A'+i, c)
		}
	}
	if rv := r.Reveal; rv != nil {
		fmt.Fprintf(d.w, "A%d. %s\n", rv.Index+1, rv.Answer)
	}
	for _, st := range r.Standings {
		if st.Rank > 0 {
			fmt.Fprintf(d.w, "#%d %s %d\n", st.Rank, st.Name, st.Total)
		}
	}
}

func (d *textDisplay) scores(s types.Snapshot) {
	parts := make([]string, 0, len(s.Teams))
	for _, t := range s.Teams {
		parts = append(parts, fmt.Sprintf("%s %d", t.Name, t.Score))
	}
	fmt.Fprintf(d.w, "scores: %s\n", strings.Join(parts, " | "))
}
