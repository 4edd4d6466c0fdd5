package session

import (
	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/quiz"
)

type CommandType string

const (
	// board
	CmdSelectQuestion     CommandType = "selectQuestion"
	CmdSetResponder       CommandType = "setResponder"
	CmdMarkCorrect        CommandType = "markCorrect"
	CmdMarkIncorrect      CommandType = "markIncorrect"
	CmdClose              CommandType = "close"
	CmdSetWager           CommandType = "setWager"
	CmdSetAuctionBid      CommandType = "setAuctionBid"
	CmdSetBlindPickTarget CommandType = "setBlindPickTarget"

	// rounds
	CmdStartRound    CommandType = "startRound"
	CmdNextQuestion  CommandType = "nextQ"
	CmdPrevQuestion  CommandType = "prevQ"
	CmdStartAnswers  CommandType = "startAnswers"
	CmdNextAnswer    CommandType = "nextA"
	CmdPrevAnswer    CommandType = "prevA"
	CmdStartBreak    CommandType = "startBreak"
	CmdShowStandings CommandType = "showStandings"
	CmdNextRound     CommandType = "goNextRound"
	CmdSetRoundScore CommandType = "setRoundScore"
	CmdTallyAnswer   CommandType = "tallyAnswer"

	// either mode
	CmdStartTimer  CommandType = "startTimer"
	CmdStopTimer   CommandType = "stopTimer"
	CmdResumeTimer CommandType = "resumeTimer"
	CmdResetTimer  CommandType = "resetTimer"
	CmdAdjustScore CommandType = "adjustScore"
	CmdSetTheme    CommandType = "setTheme"
	CmdMedia       CommandType = "media"
	CmdMediaError  CommandType = "reportMediaError"
	CmdReset       CommandType = "reset"
)

// Command is one host action. Only the fields its Type needs are read.
type Command struct {
	Type       CommandType           `json:"type"`
	TeamID     quiz.TeamID           `json:"teamId,omitempty"`
	CategoryID string                `json:"categoryId,omitempty"`
	QuestionID string                `json:"questionId,omitempty"`
	Amount     int                   `json:"amount,omitempty"`
	Round      int                   `json:"round,omitempty"`
	Index      int                   `json:"index,omitempty"`
	Correct    bool                  `json:"correct,omitempty"`
	Seconds    int                   `json:"seconds,omitempty"`
	Action     broadcast.VideoAction `json:"action,omitempty"`
	Time       *float64              `json:"time,omitempty"`
	Theme      string                `json:"theme,omitempty"`
	Message    string                `json:"message,omitempty"`
}
