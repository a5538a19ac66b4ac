// Package tui provides the Bubble Tea integration for Lane Rush.
// It handles the terminal UI loop, input mapping, rendering and the SSH
// server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxFrameGap caps the elapsed time of one tick so a stalled terminal
// cannot move obstacles through the player in a single step.
const maxFrameGap = 100 * time.Millisecond

// TickMsg is sent to trigger a game simulation tick.
type TickMsg struct {
	Time time.Time
	gen  uint64
}

// Scheduler keeps at most one tick outstanding and measures the time
// between accepted ticks. Cancel invalidates a tick already in flight.
type Scheduler struct {
	interval time.Duration
	gen      uint64
	pending  bool
	last     time.Time
}

// NewScheduler creates a scheduler ticking tickRate times per second.
func NewScheduler(tickRate int) *Scheduler {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &Scheduler{interval: time.Second / time.Duration(tickRate)}
}

// Request returns a command producing the next tick, or nil if one is
// already outstanding.
func (s *Scheduler) Request() tea.Cmd {
	if s.pending {
		return nil
	}
	s.pending = true
	gen := s.gen
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, gen: gen}
	})
}

// Cancel drops the outstanding tick and forgets the elapsed baseline, so
// the next accepted tick does not report the time spent cancelled.
func (s *Scheduler) Cancel() {
	s.gen++
	s.pending = false
	s.last = time.Time{}
}

// Accept consumes a tick message. It returns false for ticks from a
// cancelled request. Otherwise it returns the time since the previous
// accepted tick, capped at maxFrameGap.
func (s *Scheduler) Accept(msg TickMsg) (time.Duration, bool) {
	if msg.gen != s.gen || !s.pending {
		return 0, false
	}
	s.pending = false

	elapsed := s.interval
	if !s.last.IsZero() {
		elapsed = msg.Time.Sub(s.last)
	}
	s.last = msg.Time
	return min(max(elapsed, 0), maxFrameGap), true
}
