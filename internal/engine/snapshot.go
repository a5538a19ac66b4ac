package engine

import (
	"github.com/vovakirdan/lane-rush/internal/session"
)

// Snapshot is an immutable copy of the game state after a tick.
type Snapshot struct {
	Tick            uint64
	Round           uint64
	PlayerLane      int
	Obstacles       []Obstacle
	Score           int
	Level           int
	SpeedMultiplier float64
	HighScore       int
	NewBest         bool
	State           session.State
}

// clone returns a copy that shares no memory with s.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Obstacles = append([]Obstacle(nil), s.Obstacles...)
	return out
}
