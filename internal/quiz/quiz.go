package quiz

type TeamID string

type Team struct {
	ID    TeamID `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Score int    `json:"score" yaml:"score"`
	Color string `json:"color" yaml:"color"`
}

type Mode string

const (
	ModeBoard  Mode = "board"
	ModeRounds Mode = "rounds"
)

type QuestionKind string

const (
	KindNormal    QuestionKind = "normal"
	KindWager     QuestionKind = "wager"
	KindAuction   QuestionKind = "auction"
	KindBlindPick QuestionKind = "blind-pick"
	KindPerform   QuestionKind = "perform"
)

func (k QuestionKind) Valid() bool {
	switch k {
	case KindNormal, KindWager, KindAuction, KindBlindPick, KindPerform:
		return true
	}
	return false
}

// Media points at a clip the display plays; decoding is someone else's job.
// Start and End are offsets in seconds, End 0 meaning "to the end".
type Media struct {
	Ref   string  `json:"ref" yaml:"ref"`
	Start float64 `json:"start,omitempty" yaml:"start"`
	End   float64 `json:"end,omitempty" yaml:"end"`
}

type BoardQuestion struct {
	ID         string       `json:"id" yaml:"id"`
	Kind       QuestionKind `json:"kind" yaml:"kind"`
	Prompt     string       `json:"prompt,omitempty" yaml:"prompt"`
	Answer     string       `json:"answer" yaml:"answer"`
	Media      *Media       `json:"media,omitempty" yaml:"media"`
	Played     bool         `json:"played" yaml:"-"`
	AnsweredBy TeamID       `json:"answeredBy,omitempty" yaml:"-"`
}

type Category struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Questions []BoardQuestion `json:"questions" yaml:"questions"`
}

type BoardGame struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Clone returns a deep copy so a session can mutate played flags
// without touching the caller's definition.
func (g BoardGame) Clone() BoardGame {
	out := BoardGame{Categories: make([]Category, len(g.Categories))}
	for i, c := range g.Categories {
		c.Questions = append([]BoardQuestion(nil), c.Questions...)
		for j := range c.Questions {
			if m := c.Questions[j].Media; m != nil {
				mc := *m
				c.Questions[j].Media = &mc
			}
		}
		out.Categories[i] = c
	}
	return out
}

type RoundType string

const (
	RoundText    RoundType = "text"
	RoundPicture RoundType = "picture"
	RoundAudio   RoundType = "audio"
	RoundVideo   RoundType = "video"
	RoundChoice  RoundType = "choice"
)

type AnswerMethod string

const (
	AnswerPaper   AnswerMethod = "paper"
	AnswerDigital AnswerMethod = "digital"
)

type RoundQuestion struct {
	ID           string   `json:"id" yaml:"id"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Answer       string   `json:"answer" yaml:"answer"`
	Points       int      `json:"points,omitempty" yaml:"points"`
	TimeLimit    int      `json:"timeLimit,omitempty" yaml:"timeLimit"`
	Media        *Media   `json:"media,omitempty" yaml:"media"`
	Choices      []string `json:"choices,omitempty" yaml:"choices"`
	CorrectIndex int      `json:"correctIndex,omitempty" yaml:"correctIndex"`
}

type Round struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Type         RoundType       `json:"type" yaml:"type"`
	Questions    []RoundQuestion `json:"questions" yaml:"questions"`
	TimeLimit    int             `json:"timeLimit" yaml:"timeLimit"`
	Points       int             `json:"points" yaml:"points"`
	ShowAnswers  bool            `json:"showAnswers" yaml:"showAnswers"`
	AnswerMethod AnswerMethod    `json:"answerMethod" yaml:"answerMethod"`
	Break        bool            `json:"break" yaml:"break"`
	Standings    bool            `json:"standings" yaml:"standings"`
}

// PointsFor falls back to the round default when the question has none.
func (r Round) PointsFor(i int) int {
	if i < 0 || i >= len(r.Questions) {
		return 0
	}
	if p := r.Questions[i].Points; p > 0 {
		return p
	}
	return r.Points
}

func (r Round) TimeLimitFor(i int) int {
	if i >= 0 && i < len(r.Questions) && r.Questions[i].TimeLimit > 0 {
		return r.Questions[i].TimeLimit
	}
	return r.TimeLimit
}

type RoundsGame struct {
	Rounds []Round `json:"rounds" yaml:"rounds"`
}

// Definition is a fully formed game handed over by the catalog.
type Definition struct {
	ID     string      `json:"id,omitempty" yaml:"id"`
	Name   string      `json:"name" yaml:"name"`
	Mode   Mode        `json:"mode" yaml:"mode"`
	Board  *BoardGame  `json:"board,omitempty" yaml:"board"`
	Rounds *RoundsGame `json:"rounds,omitempty" yaml:"rounds"`
	Teams  []Team      `json:"teams,omitempty" yaml:"teams"`
}

func IndexOfTeam(teams []Team, id TeamID) int {
	for i, t := range teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func TeamOrder(teams []Team) []TeamID {
	ids := make([]TeamID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
