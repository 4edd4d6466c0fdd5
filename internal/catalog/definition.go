package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

var ErrInvalid = errors.New("invalid game definition")

// Decode reads a YAML definition. JSON is valid YAML, so both work.
func Decode(data []byte) (quiz.Definition, error) {
	var def quiz.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return quiz.Definition{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	Normalize(&def)
	if err := Validate(def); err != nil {
		return quiz.Definition{}, err
	}
	return def, nil
}

func LoadFile(path string) (quiz.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quiz.Definition{}, err
	}
	return Decode(data)
}

// Normalize fills in what a hand-written file usually leaves out: the mode
// when only one game is present, ids, and the paper answer method.
func Normalize(def *quiz.Definition) {
	if def.Mode == "" {
		switch {
		case def.Board != nil && def.Rounds == nil:
			def.Mode = quiz.ModeBoard
		case def.Rounds != nil && def.Board == nil:
			def.Mode = quiz.ModeRounds
		}
	}
	for i := range def.Teams {
		if def.Teams[i].ID == "" {
			def.Teams[i].ID = quiz.TeamID(uuid.NewString())
		}
	}
	if b := def.Board; b != nil {
		for ci := range b.Categories {
			c := &b.Categories[ci]
			if c.ID == "" {
				c.ID = fmt.Sprintf("c%d", ci+1)
			}
			for qi := range c.Questions {
				q := &c.Questions[qi]
				if q.ID == "" {
					q.ID = fmt.Sprintf("%s-q%d", c.ID, qi+1)
				}
				if q.Kind == "" {
					q.Kind = quiz.KindNormal
				}
			}
		}
	}
	if g := def.Rounds; g != nil {
		for ri := range g.Rounds {
			r := &g.Rounds[ri]
			if r.ID == "" {
				r.ID = fmt.Sprintf("r%d", ri+1)
			}
			if r.AnswerMethod == "" {
				r.AnswerMethod = quiz.AnswerPaper
			}
			if r.Type == "" {
				r.Type = quiz.RoundText
			}
			for qi := range r.Questions {
				if r.Questions[qi].ID == "" {
					r.Questions[qi].ID = fmt.Sprintf("%s-q%d", r.ID, qi+1)
				}
			}
		}
	}
}

// Validate reports every problem at once.
func Validate(def quiz.Definition) error {
	var err error
	add := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf(format, args...))
	}

	if len(def.Teams) == 0 {
		add("no teams")
	}
	seen := map[quiz.TeamID]bool{}
	for _, t := range def.Teams {
		if seen[t.ID] {
			add("duplicate team id %q", t.ID)
		}
		seen[t.ID] = true
	}

	switch def.Mode {
	case quiz.ModeBoard:
		if def.Board == nil || len(def.Board.Categories) == 0 {
			add("board mode needs at least one category")
		} else {
			err = multierr.Append(err, validateBoard(*def.Board))
		}
	case quiz.ModeRounds:
		if def.Rounds == nil || len(def.Rounds.Rounds) == 0 {
			add("rounds mode needs at least one round")
		} else {
			err = multierr.Append(err, validateRounds(*def.Rounds))
		}
	default:
		add("unknown mode %q", def.Mode)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func validateBoard(g quiz.BoardGame) error {
	var err error
	ids := map[string]bool{}
	for _, c := range g.Categories {
		if ids[c.ID] {
			err = multierr.Append(err, fmt.Errorf("duplicate category id %q", c.ID))
		}
		ids[c.ID] = true

		qids := map[string]bool{}
		for _, q := range c.Questions {
			if qids[q.ID] {
				err = multierr.Append(err, fmt.Errorf("category %q: duplicate question id %q", c.ID, q.ID))
			}
			qids[q.ID] = true
			if !q.Kind.Valid() {
				err = multierr.Append(err, fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind))
			}
			err = multierr.Append(err, validateMedia(q.ID, q.Media))
		}
	}
	return err
}

func validateRounds(g quiz.RoundsGame) error {
	var err error
	for _, r := range g.Rounds {
		switch r.AnswerMethod {
		case quiz.AnswerPaper, quiz.AnswerDigital:
		default:
			err = multierr.Append(err, fmt.Errorf("round %q: unknown answer method %q", r.ID, r.AnswerMethod))
		}
		switch r.Type {
		case quiz.RoundText, quiz.RoundPicture, quiz.RoundAudio, quiz.RoundVideo, quiz.RoundChoice:
		default:
			err = multierr.Append(err, fmt.Errorf("round %q: unknown type %q", r.ID, r.Type))
		}
		if r.TimeLimit < 0 || r.Points < 0 {
			err = multierr.Append(err, fmt.Errorf("round %q: negative time limit or points", r.ID))
		}
		for _, q := range r.Questions {
			if len(q.Choices) > 0 && (q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices)) {
				err = multierr.Append(err, fmt.Errorf("question %q: correct index %d outside %d choices", q.ID, q.CorrectIndex, len(q.Choices)))
			}
			if r.Type == quiz.RoundChoice && len(q.Choices) == 0 {
				err = multierr.Append(err, fmt.Errorf("question %q: choice round without choices", q.ID))
			}
			err = multierr.Append(err, validateMedia(q.ID, q.Media))
		}
	}
	return err
}

func validateMedia(id string, m *quiz.Media) error {
	if m == nil {
		return nil
	}
	if m.Ref == "" {
		return fmt.Errorf("question %q: media without ref", id)
	}
	if m.Start < 0 || (m.End != 0 && m.End < m.Start) {
		return fmt.Errorf("question %q: bad media window %.1f-%.1f", id, m.Start, m.End)
	}
	return nil
}
