package types

import "github.com/DoyleJ11/quiz-night-backend/internal/session"

// ClientMessage is what a host control sends.
type ClientMessage struct {
	Type    string          `json:"type"`         // "Command" | "Ping"
	ID      string          `json:"id,omitempty"` // echoed back on Ack/Error
	Command session.Command `json:"command"`
}

type ServerMessage struct {
	Type    string            `json:"type"` // "HostView" | "Ack" | "Error" | "Pong"
	ID      string            `json:"id,omitempty"`
	Version int               `json:"version,omitempty"`
	View    *session.HostView `json:"view,omitempty"`
	Error   string            `json:"error,omitempty"`
}
