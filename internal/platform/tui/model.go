package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/core"
	"github.com/vovakirdan/lane-rush/internal/engine"
	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/player"
	"github.com/vovakirdan/lane-rush/internal/session"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

// Layout constants
const (
	chromeRows     = 3 // help line and spacing around the track
	sidePanelWidth = rankWidth + avatarWidth + nameWidth + scoreWidth + 12
	runSaveTimeout = 2 * time.Second
)

// RunRecorder stores finished rounds.
type RunRecorder interface {
	SaveRun(ctx context.Context, r storage.Run) (int64, error)
}

// Options configures a game model.
type Options struct {
	Config   config.LaneRushConfig
	Player   player.Profile       // Empty for anonymous play
	Board    *leaderboard.Service // Optional; receives scores of identified players and feeds the side panel
	Runs     RunRecorder          // Optional
	Logger   *log.Logger
	TickRate int
	Seed     int64 // 0 picks a time-based seed
}

// Model is the Bubble Tea model for one Lane Rush player.
type Model struct {
	cfg     config.LaneRushConfig
	engine  *engine.Engine
	sess    *session.Session
	sched   *Scheduler
	keys    *KeyMapper
	help    help.Model
	track   *core.Screen
	board   table.Model
	entries []leaderboard.Entry
	sub     *leaderboard.Subscription
	saves   *sync.WaitGroup // run saves in flight

	showBoard bool
	width     int
	height    int
	quitting  bool
}

// NewModel wires a session and engine for one player.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithPlayer(opts.Player),
	}
	if opts.Board != nil && opts.Player.Complete() {
		sessOpts = append(sessOpts, session.WithSink(opts.Board))
	}
	sess := session.New(opts.Config, sessOpts...)
	saves := &sync.WaitGroup{}
	if opts.Runs != nil {
		sess.OnGameOver(recordRun(sess, opts.Runs, saves, logger))
	}

	m := Model{
		cfg:       opts.Config,
		engine:    engine.New(sess, opts.Config, engine.WithSeed(opts.Seed), engine.WithLogger(logger)),
		sess:      sess,
		saves:     saves,
		sched:     NewScheduler(opts.TickRate),
		keys:      NewKeyMapper(),
		help:      help.New(),
		board:     newBoardTable(opts.Config.Leaderboard.TopN, false),
		showBoard: true,
	}
	if opts.Board != nil {
		m.sub = opts.Board.Feed().Subscribe()
	}
	m.resize(0, 0)
	return m
}

// recordRun returns a game over listener that saves the round in the
// background. Each save is tracked in saves.
func recordRun(sess *session.Session, runs RunRecorder, saves *sync.WaitGroup, logger *log.Logger) func(session.GameOverEvent) {
	return func(ev session.GameOverEvent) {
		run := storage.Run{
			PlayerID: sess.Profile().ID,
			Score:    ev.Score,
			Level:    ev.Level,
			Duration: ev.Duration,
			PlayedAt: time.Now(),
		}
		saves.Add(1)
		go func() {
			defer saves.Done()
			ctx, cancel := context.WithTimeout(context.Background(), runSaveTimeout)
			defer cancel()
			if _, err := runs.SaveRun(ctx, run); err != nil {
				logger.Warn("could not save run", "err", err)
			}
		}()
	}
}

// Wait blocks until in-flight score submissions and run saves finish.
func (m Model) Wait() {
	m.sess.Wait()
	m.saves.Wait()
}

// Close stops following the leaderboard. Safe to call from any goroutine.
func (m Model) Close() {
	if m.sub != nil {
		m.sub.Cancel()
	}
}

// Init starts following the leaderboard. Ticks begin with the first round.
func (m Model) Init() tea.Cmd {
	return waitForBoard(m.sub)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(msg)

	case boardMsg:
		m.entries = msg
		m.board.SetRows(boardRows(m.entries, m.sess.Profile().ID))
		return m, waitForBoard(m.sub)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.MapKey(msg) {
	case core.ActionQuit:
		m.quitting = true
		m.sched.Cancel()
		m.Close()
		return m, tea.Quit

	case core.ActionLeft:
		m.engine.MovePlayer(engine.Left)

	case core.ActionRight:
		m.engine.MovePlayer(engine.Right)

	case core.ActionStart:
		switch m.sess.State() {
		case session.StateIdle, session.StateGameOver:
			m.engine.Start()
			m.sched.Cancel()
			return m, m.sched.Request()
		}

	case core.ActionPause:
		switch m.sess.State() {
		case session.StatePlaying:
			m.engine.Pause()
			m.sched.Cancel()
		case session.StatePaused:
			m.engine.Resume()
			m.sched.Cancel()
			return m, m.sched.Request()
		}

	case core.ActionRestart:
		m.engine.Reset()
		m.sched.Cancel()

	case core.ActionLeaderboard:
		m.showBoard = !m.showBoard
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	elapsed, ok := m.sched.Accept(msg)
	if !ok {
		return m, nil
	}

	m.engine.Tick(elapsed)
	if m.sess.State() != session.StatePlaying {
		m.sched.Cancel()
		return m, nil
	}
	return m, m.sched.Request()
}

// resize fits the track to the terminal height.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	rows := max(minTrackRows, height-chromeRows-2)
	w, h := trackSize(m.cfg, rows)
	if m.track == nil {
		m.track = core.NewScreen(w, h)
		return
	}
	m.track.Resize(w, h)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.engine.Snapshot()
	drawTrack(m.track, snap, m.cfg)

	side := m.renderHUD(snap)
	if m.showBoard {
		side = lipgloss.JoinVertical(lipgloss.Left, side, m.renderBoardPanel())
	}

	body := RenderScreen(m.track)
	if m.width == 0 || m.width >= m.track.Width()+sidePanelWidth+2 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", side)
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return body + "\n" + helpStyle.Render(m.help.View(m.keys.Keys()))
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(sidePanelWidth - 2)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	bestStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
)

// renderHUD renders the score panel.
func (m Model) renderHUD(snap engine.Snapshot) string {
	p := m.sess.Profile()

	var b strings.Builder
	name := "anonymous"
	if p.Complete() {
		name = p.AvatarOrDefault() + " " + p.DisplayName
	}
	b.WriteString(valueStyle.Render(name))
	b.WriteString("\n\n")

	line := func(label, value string, style lipgloss.Style) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-7s", label)))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}
	line("Score", fmt.Sprintf("%d", snap.Score), valueStyle)
	line("Level", fmt.Sprintf("%d", snap.Level), valueStyle)
	line("Speed", fmt.Sprintf("x%.1f", snap.SpeedMultiplier), valueStyle)
	line("Best", fmt.Sprintf("%d", snap.HighScore), bestStyle)
	if pos := leaderboard.Position(m.entries, p.ID); pos > 0 {
		line("Rank", fmt.Sprintf("#%d", pos), bestStyle)
	}
	line("State", snap.State.String(), labelStyle)
	if m.sess.Submitting() {
		line("", "saving score...", labelStyle)
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderBoardPanel() string {
	return panelStyle.Render(renderBoard(m.board, m.entries))
}

// Run starts the Bubble Tea program for local play and blocks until the
// player quits and any score submission or run save has finished.
func Run(opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	model.Close()
	model.Wait()
	return err
}
