package types

import "github.com/DoyleJ11/quiz-night-backend/internal/broadcast"

// Snapshot never carries board answers; rounds answers appear only in
// Reveal while answers are being shown.
type Snapshot = broadcast.Snapshot

type StructuralKey = broadcast.Key

type TeamScore = broadcast.TeamScore

type BoardSnapshot = broadcast.BoardSnapshot

type RoundsSnapshot = broadcast.RoundsSnapshot
