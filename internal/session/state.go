package session

// State is the lifecycle phase of a session. Exactly one holds at a time.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Active reports whether the session is in a round (playing or paused).
func (s State) Active() bool {
	return s == StatePlaying || s == StatePaused
}
