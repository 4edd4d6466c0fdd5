package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/quiz-night-backend/internal/timer"
)

var ErrUnknownMessage = errors.New("unknown message type")
var ErrInvalidAction = errors.New("invalid video action")

type Channel string

const (
	ChannelState Channel = "state"
	ChannelTimer Channel = "timer"
	ChannelVideo Channel = "video"
)

const (
	TypeStateUpdate = "state-update"
	TypeTimer       = "timer"
	TypeVideo       = "video"
)

// Message is one spectator-bound payload.
type Message interface {
	Channel() Channel
}

type StateUpdate struct {
	Type     string   `json:"type"`
	Snapshot Snapshot `json:"snapshot"`
}

type TimerUpdate struct {
	Type      string `json:"type"`
	Time      int    `json:"time"`
	TimerOn   bool   `json:"timerOn"`
	TimeLimit int    `json:"timeLimit"`
}

type VideoAction string

const (
	VideoPlay       VideoAction = "play"
	VideoPause      VideoAction = "pause"
	VideoStop       VideoAction = "stop"
	VideoSeek       VideoAction = "seek"
	VideoFullscreen VideoAction = "fullscreen"
)

func (a VideoAction) Valid() bool {
	switch a {
	case VideoPlay, VideoPause, VideoStop, VideoSeek, VideoFullscreen:
		return true
	}
	return false
}

type VideoCommand struct {
	Type   string      `json:"type"`
	Action VideoAction `json:"action"`
	Time   *float64    `json:"time,omitempty"`
}

func (StateUpdate) Channel() Channel  { return ChannelState }
func (TimerUpdate) Channel() Channel  { return ChannelTimer }
func (VideoCommand) Channel() Channel { return ChannelVideo }

func NewStateUpdate(s Snapshot) StateUpdate {
	return StateUpdate{Type: TypeStateUpdate, Snapshot: s}
}

func NewTimerUpdate(t timer.Tick) TimerUpdate {
	return TimerUpdate{Type: TypeTimer, Time: t.Remaining, TimerOn: t.Running, TimeLimit: t.Limit}
}

// NewVideoCommand validates the action. Seek requires a position.
func NewVideoCommand(action VideoAction, at *float64) (VideoCommand, error) {
	if !action.Valid() {
		return VideoCommand{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if action == VideoSeek && at == nil {
		return VideoCommand{}, fmt.Errorf("%w: seek without time", ErrInvalidAction)
	}
	return VideoCommand{Type: TypeVideo, Action: action, Time: at}, nil
}

// Decode parses a spectator message by its type field.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case TypeStateUpdate:
		var m StateUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeTimer:
		var m TimerUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeVideo:
		var m VideoCommand
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, head.Type)
	}
}
