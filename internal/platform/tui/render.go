package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/core"
	"github.com/vovakirdan/lane-rush/internal/engine"
	"github.com/vovakirdan/lane-rush/internal/session"
)

// Track layout in terminal cells
const (
	laneCells    = 5 // columns per lane, including the divider
	carCells     = 3 // car width in columns
	minTrackRows = 10
)

// Visual characters for rendering
const (
	carChar     = '█'
	playerChar  = '▓'
	dividerChar = '┊'
	centerChar  = '╎'
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// trackSize returns the screen size needed to draw a track with the given
// number of rows.
func trackSize(cfg config.LaneRushConfig, rows int) (w, h int) {
	return cfg.Track.Lanes*laneCells + 1, rows + 2
}

// drawTrack renders the snapshot onto dst, which must be sized by
// trackSize. World Y maps linearly onto the rows inside the border.
func drawTrack(dst *core.Screen, snap engine.Snapshot, cfg config.LaneRushConfig) {
	dst.Clear()
	rows := dst.Height() - 2
	scale := float64(rows) / cfg.Track.Length
	carRows := max(1, int(math.Round(cfg.Car.Height*scale)))

	dst.DrawBox(core.NewRect(0, 0, dst.Width(), dst.Height()))
	for lane := 1; lane < cfg.Track.Lanes; lane++ {
		r, c := dividerChar, core.ColorGray
		if lane == cfg.Track.Lanes/2 {
			r, c = centerChar, core.ColorYellow
		}
		dst.DrawVLine(lane*laneCells, 1, rows, r, c)
	}

	clip := func(rect core.Rect) core.Rect {
		top := max(rect.Y, 1)
		bottom := min(rect.Bottom(), rows+1)
		return core.NewRect(rect.X, top, rect.W, max(0, bottom-top))
	}

	for _, o := range snap.Obstacles {
		top := int(math.Floor((o.Offset-cfg.Car.Height/2)*scale)) + 1
		color := core.VariantColors[int(o.Variant)%len(core.VariantColors)]
		dst.DrawRect(clip(core.NewRect(carColumn(o.Lane), top, carCells, carRows)), carChar, color)
	}

	playerColor := core.ColorBrightYellow
	if snap.State == session.StateGameOver {
		playerColor = core.ColorBrightRed
	}
	dst.DrawRect(core.NewRect(carColumn(snap.PlayerLane), rows+1-carRows, carCells, carRows), playerChar, playerColor)

	switch snap.State {
	case session.StateIdle:
		drawBanner(dst, rows/2, "LANE RUSH", "press enter to start")
	case session.StatePaused:
		drawBanner(dst, rows/2, "PAUSED", "p to resume")
	case session.StateGameOver:
		drawBanner(dst, rows/2, "GAME OVER", fmt.Sprintf("score %d  enter to retry", snap.Score))
		if snap.NewBest {
			dst.DrawTextCentered(rows/2+2, "NEW BEST!", core.ColorBrightYellow)
		}
	}
}

// carColumn returns the left screen column of a car in a lane.
func carColumn(lane int) int {
	return lane*laneCells + 1 + (laneCells-1-carCells)/2
}

func drawBanner(dst *core.Screen, y int, title, hint string) {
	dst.DrawRect(core.NewRect(1, y-1, dst.Width()-2, 4), ' ', core.ColorDefault)
	dst.DrawTextCentered(y, title, core.ColorBrightYellow)
	dst.DrawTextCentered(y+1, hint, core.ColorWhite)
}
