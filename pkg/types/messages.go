// Package types is the spectator wire schema for displays written outside
// this module.
//
// Every message is a JSON object with a "type" field:
//
//	state-update: {type, snapshot}            full redacted snapshot
//	timer:        {type, time, timerOn, timeLimit}
//	video:        {type, action, time?}        action is play|pause|stop|seek|fullscreen
//
// A display re-renders when Key() of an incoming snapshot differs from the
// one it last rendered and patches in place otherwise. Timer messages never
// touch media elements.
package types

import "github.com/DoyleJ11/quiz-night-backend/internal/broadcast"

type Message = broadcast.Message

type StateUpdate = broadcast.StateUpdate

type TimerUpdate = broadcast.TimerUpdate

type VideoCommand = broadcast.VideoCommand

type VideoAction = broadcast.VideoAction

// Renderer and Receiver implement the re-render/refresh split for a display.
type Renderer = broadcast.Renderer

type Receiver = broadcast.Receiver

func NewReceiver(r Renderer) *Receiver { return broadcast.NewReceiver(r) }

// Decode parses one spectator message.
func Decode(data []byte) (Message, error) { return broadcast.Decode(data) }
