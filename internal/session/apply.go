package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-night-backend/internal/board"
	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
)

func (s *Session) apply(cmd Command) (*broadcast.VideoCommand, error) {
	switch cmd.Type {
	case CmdSetTheme:
		s.theme = cmd.Theme
		return nil, nil
	case CmdMediaError:
		s.mediaError = cmd.Message
		s.log.Warn("media playback failed", zap.String("message", cmd.Message))
		return nil, nil
	case CmdMedia:
		return s.media(cmd)
	case CmdReset:
		s.reset()
		return nil, nil
	}

	if s.board != nil {
		return nil, s.applyBoard(cmd)
	}
	return nil, s.applyRounds(cmd)
}

func (s *Session) applyBoard(cmd Command) error {
	b := s.board
	switch cmd.Type {
	case CmdSelectQuestion:
		return b.SelectQuestion(cmd.CategoryID, cmd.QuestionID)
	case CmdSetResponder:
		return b.SetResponder(cmd.TeamID)
	case CmdSetWager:
		return b.SetWager(cmd.Amount)
	case CmdSetAuctionBid:
		return b.SetAuctionBid(cmd.TeamID, cmd.Amount)
	case CmdSetBlindPickTarget:
		return b.SetBlindPickTarget(cmd.TeamID)
	case CmdMarkIncorrect:
		return b.MarkIncorrect()
	case CmdMarkCorrect:
		if err := b.MarkCorrect(); err != nil {
			return err
		}
		s.timer.Stop()
		return nil
	case CmdClose:
		if err := b.Close(); err != nil {
			return err
		}
		s.timer.Stop()
		return nil
	case CmdAdjustScore:
		return b.AdjustScore(cmd.TeamID, cmd.Amount)
	case CmdStartTimer:
		if cmd.Seconds <= 0 {
			return ErrInvalidSeconds
		}
		s.timer.Start(cmd.Seconds)
		return nil
	case CmdStopTimer:
		s.timer.Stop()
		return nil
	case CmdResumeTimer:
		s.timer.Resume()
		return nil
	case CmdResetTimer:
		s.timer.Reset()
		return nil
	case CmdStartRound, CmdNextQuestion, CmdPrevQuestion, CmdStartAnswers, CmdNextAnswer,
		CmdPrevAnswer, CmdStartBreak, CmdShowStandings, CmdNextRound, CmdSetRoundScore, CmdTallyAnswer:
		return ErrWrongMode
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

func (s *Session) applyRounds(cmd Command) error {
	r := s.rounds
	switch cmd.Type {
	case CmdStartRound:
		return r.StartRound()
	case CmdNextQuestion:
		return r.NextQuestion()
	case CmdPrevQuestion:
		return r.PrevQuestion()
	case CmdStartAnswers:
		return r.StartAnswers()
	case CmdNextAnswer:
		return r.NextAnswer()
	case CmdPrevAnswer:
		return r.PrevAnswer()
	case CmdStartBreak:
		return r.StartBreak()
	case CmdShowStandings:
		return r.ShowStandings()
	case CmdNextRound:
		return r.NextRound()
	case CmdSetRoundScore:
		return r.SetRoundScore(cmd.TeamID, cmd.Round, cmd.Amount)
	case CmdTallyAnswer:
		return r.TallyAnswer(cmd.TeamID, cmd.Index, cmd.Correct)
	case CmdAdjustScore:
		return r.AdjustScore(cmd.TeamID, cmd.Amount)
	case CmdStartTimer:
		return r.StartTimer(cmd.Seconds)
	case CmdStopTimer:
		return r.StopTimer()
	case CmdResumeTimer:
		return r.ResumeTimer()
	case CmdResetTimer:
		return r.ResetTimer()
	case CmdSelectQuestion, CmdSetResponder, CmdSetWager, CmdSetAuctionBid, CmdSetBlindPickTarget,
		CmdMarkCorrect, CmdMarkIncorrect, CmdClose:
		return ErrWrongMode
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

// media updates board playback state and yields the command for the
// display. Rounds media has no session state to track.
func (s *Session) media(cmd Command) (*broadcast.VideoCommand, error) {
	video, err := broadcast.NewVideoCommand(cmd.Action, cmd.Time)
	if err != nil {
		return nil, err
	}
	if s.board == nil {
		return &video, nil
	}
	if _, ok := s.board.Active(); !ok {
		return nil, board.ErrNoActiveQuestion
	}

	switch cmd.Action {
	case broadcast.VideoPlay:
		_ = s.board.SetPlaying(true)
	case broadcast.VideoPause:
		_ = s.board.SetPlaying(false)
	case broadcast.VideoStop:
		_ = s.board.SetPlaying(false)
		_ = s.board.SetMediaTime(0)
	}
	if cmd.Time != nil {
		_ = s.board.SetMediaTime(*cmd.Time)
	}
	return &video, nil
}

// reset stops the countdown and restores the definition as loaded.
func (s *Session) reset() {
	s.timer.Stop()
	if s.board != nil {
		s.board.Reset()
	}
	if s.rounds != nil {
		s.rounds.Reset()
	}
	s.theme = s.initTheme
	s.mediaError = ""
	// displays rebuild from scratch after a reset
	s.bc.Forget()
}
