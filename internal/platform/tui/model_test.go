package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/player"
	"github.com/vovakirdan/lane-rush/internal/session"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

func newTestModel(t *testing.T, board *leaderboard.Service) Model {
	t.Helper()
	m := NewModel(Options{
		Config:   config.DefaultLaneRushConfig(),
		Board:    board,
		Logger:   log.New(io.Discard),
		TickRate: 60,
		Seed:     1,
	})
	t.Cleanup(m.Close)
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelStartPauseResume(t *testing.T) {
	m := newTestModel(t, nil)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.sess.State() != session.StatePlaying {
		t.Fatalf("State() = %v after enter, expected playing", m.sess.State())
	}
	if cmd == nil || !m.sched.pending {
		t.Fatal("start should request a tick")
	}

	// Deliver the requested tick directly
	tick := TickMsg{Time: time.Now(), gen: m.sched.gen}
	next, cmd := m.Update(tick)
	m = next.(Model)
	if cmd == nil {
		t.Error("a playing tick should request the next one")
	}
	if m.engine.Snapshot().Tick != 1 {
		t.Errorf("Tick = %d, expected 1", m.engine.Snapshot().Tick)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if m.sess.State() != session.StatePaused {
		t.Fatalf("State() = %v after p, expected paused", m.sess.State())
	}
	if m.sched.pending {
		t.Error("pause should cancel the outstanding tick")
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if m.sess.State() != session.StatePlaying {
		t.Fatalf("State() = %v after second p, expected playing", m.sess.State())
	}
	if cmd == nil {
		t.Error("resume should request a tick")
	}
}

func TestModelStaleTickIgnored(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	stale := TickMsg{Time: time.Now(), gen: m.sched.gen}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})

	next, cmd := m.Update(stale)
	m = next.(Model)
	if cmd != nil {
		t.Error("stale tick should not schedule another")
	}
	if m.engine.Snapshot().Tick != 0 {
		t.Errorf("stale tick advanced the world to %d", m.engine.Snapshot().Tick)
	}
}

func TestModelMoveAndRestart(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	start := m.engine.Snapshot().PlayerLane
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.engine.Snapshot().PlayerLane != start-1 {
		t.Errorf("player lane = %d, expected %d", m.engine.Snapshot().PlayerLane, start-1)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.sess.State() != session.StateIdle {
		t.Errorf("State() = %v after r, expected idle", m.sess.State())
	}
	if m.sched.pending {
		t.Error("reset should cancel the outstanding tick")
	}
}

func TestModelFollowsLeaderboard(t *testing.T) {
	feed := leaderboard.NewFeed()
	m := newTestModel(t, leaderboard.NewService(nil, feed, 10, log.New(io.Discard)))

	feed.Publish([]leaderboard.Entry{{PlayerID: "x", DisplayName: "Racer", Score: 77}})

	msg := m.Init()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if len(m.entries) != 1 || m.entries[0].Score != 77 {
		t.Fatalf("entries = %+v, expected the published list", m.entries)
	}
	if cmd == nil {
		t.Error("model should keep waiting for updates")
	}
	if view := m.View(); !strings.Contains(view, "Racer") {
		t.Error("leaderboard panel should list the published player")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.showBoard {
		t.Error("tab should hide the leaderboard panel")
	}
}

func TestModelViewStates(t *testing.T) {
	m := newTestModel(t, nil)
	if !strings.Contains(m.View(), "LANE RUSH") {
		t.Error("idle view should show the title banner")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.engine.End()
	if !strings.Contains(m.View(), "GAME OVER") {
		t.Error("game over view should show the banner")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, nil)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}

type blockingRuns struct {
	release chan struct{}
	mu      sync.Mutex
	saved   []storage.Run
}

func (b *blockingRuns) SaveRun(ctx context.Context, r storage.Run) (int64, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = append(b.saved, r)
	return int64(len(b.saved)), nil
}

func (b *blockingRuns) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.saved)
}

func TestModelWaitCoversRunSaves(t *testing.T) {
	runs := &blockingRuns{release: make(chan struct{})}
	m := NewModel(Options{
		Config: config.DefaultLaneRushConfig(),
		Runs:   runs,
		Logger: log.New(io.Discard),
		Seed:   1,
	})
	defer m.Close()

	m.engine.Start()
	m.sess.ReportProgress(3 * time.Second)
	m.engine.End()

	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while the run was still being saved")
	case <-time.After(20 * time.Millisecond):
	}

	close(runs.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the save finished")
	}
	if runs.count() != 1 {
		t.Errorf("saved runs = %d, expected 1", runs.count())
	}
}

func TestModelShowsPendingSubmission(t *testing.T) {
	store := &countingStore{block: make(chan struct{})}
	quiet := log.New(io.Discard)
	m := NewModel(Options{
		Config: config.DefaultLaneRushConfig(),
		Player: player.Profile{ID: "alice", DisplayName: "Alice"},
		Board:  leaderboard.NewService(store, leaderboard.NewFeed(), 10, quiet),
		Logger: quiet,
		Seed:   1,
	})
	defer m.Close()

	m.engine.Start()
	m.sess.ReportProgress(4 * time.Second)
	m.engine.End()

	if !strings.Contains(m.View(), "saving score") {
		t.Error("view should show the submission in flight")
	}

	close(store.block)
	m.Wait()
	if strings.Contains(m.View(), "saving score") {
		t.Error("saving indicator should clear once the submission finished")
	}
	if !strings.Contains(m.View(), "NEW BEST!") {
		t.Error("game over view should celebrate the new best")
	}
}
