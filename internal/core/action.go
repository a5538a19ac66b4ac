package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone        Action = iota
	ActionLeft               // A, Left arrow - shift one lane left
	ActionRight              // D, Right arrow - shift one lane right
	ActionStart              // Enter, Space when idle or game over
	ActionPause              // P, Space, Esc - toggle pause
	ActionRestart            // R - back to idle
	ActionLeaderboard        // Tab - toggle leaderboard panel
	ActionQuit               // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionStart:
		return "Start"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionLeaderboard:
		return "Leaderboard"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
