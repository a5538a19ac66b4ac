package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/player"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

// Board column widths
const (
	rankWidth   = 4
	avatarWidth = 3
	nameWidth   = 14
	scoreWidth  = 7
)

// boardMsg carries a ranked list from a feed subscription.
type boardMsg []leaderboard.Entry

// waitForBoard returns a command that waits for the next ranked list.
// It yields nil once the subscription is cancelled.
func waitForBoard(sub *leaderboard.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		entries, ok := <-sub.C
		if !ok {
			return nil
		}
		return boardMsg(entries)
	}
}

// newBoardTable creates the ranked list table.
func newBoardTable(height int, focused bool) table.Model {
	columns := []table.Column{
		{Title: "#", Width: rankWidth},
		{Title: "", Width: avatarWidth},
		{Title: "Player", Width: nameWidth},
		{Title: "Score", Width: scoreWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(focused),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	if focused {
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
	} else {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)

	return t
}

// boardRows converts ranked entries to table rows. The row of playerID is
// marked.
func boardRows(entries []leaderboard.Entry, playerID string) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rank := fmt.Sprintf("%d", i+1)
		if playerID != "" && e.PlayerID == playerID {
			rank = "▶" + rank
		}
		avatar := e.Avatar
		if avatar == "" {
			avatar = player.DefaultAvatar
		}
		rows[i] = table.Row{rank, avatar, truncate(e.DisplayName, nameWidth), fmt.Sprintf("%d", e.Score)}
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the standalone leaderboard
// screen. It follows the feed, so new bests show up while it is open.
type ScoreboardModel struct {
	entries  []leaderboard.Entry
	stats    storage.Stats
	playerID string
	sub      *leaderboard.Subscription
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	quitting bool
}

// NewScoreboardModel creates a scoreboard following feed. stats describes
// the run history shown under the table.
func NewScoreboardModel(feed *leaderboard.Feed, stats storage.Stats, playerID string) ScoreboardModel {
	m := ScoreboardModel{
		stats:    stats,
		playerID: playerID,
		table:    newBoardTable(leaderboard.DefaultTopN, true),
		help:     help.New(),
		keys:     DefaultScoreboardKeyMap(),
	}
	if feed != nil {
		m.entries = feed.Latest()
		m.sub = feed.Subscribe()
	}
	m.table.SetRows(boardRows(m.entries, playerID))
	return m
}

// Init starts following the feed.
func (m ScoreboardModel) Init() tea.Cmd {
	return waitForBoard(m.sub)
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			if m.sub != nil {
				m.sub.Cancel()
			}
			return m, tea.Quit
		}

	case boardMsg:
		m.entries = msg
		m.table.SetRows(boardRows(m.entries, m.playerID))
		return m, waitForBoard(m.sub)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("LANE RUSH · TOP 10"))
	b.WriteString("\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(renderBoard(m.table, m.entries)))
	b.WriteString("\n")

	statsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	b.WriteString(statsStyle.Render(formatStats(m.stats)))
	b.WriteString("\n\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderBoard renders the table or the empty message.
func renderBoard(t table.Model, entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(1, 2)
		return emptyStyle.Render("No scores yet.\nBe the first on the board!")
	}
	return t.View()
}

func formatStats(st storage.Stats) string {
	if st.GamesCount == 0 {
		return "No runs recorded."
	}
	return fmt.Sprintf("%d runs · best %d · avg %.1f · last played %s",
		st.GamesCount, st.HighScore, st.AvgScore, st.LastPlayed.Format("Jan 02 15:04"))
}

// RunScoreboard runs the leaderboard screen until the user quits.
func RunScoreboard(feed *leaderboard.Feed, stats storage.Stats, playerID string) error {
	p := tea.NewProgram(
		NewScoreboardModel(feed, stats, playerID),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
