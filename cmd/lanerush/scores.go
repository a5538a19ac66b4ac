package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/platform/tui"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

var flagPlain bool

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top 10 players and run statistics.

In a terminal the leaderboard opens as an interactive screen; otherwise, or
with --plain, it is printed as text.

Examples:
  lanerush scores
  lanerush scores --plain
  lanerush scores --player alice`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print as plain text")
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening scores database: %w", err)
	}
	defer store.Close()

	board := newBoard(store, cfg, newLogger(os.Stderr, "lanerush"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := store.Stats(ctx, flagPlayer)
	if err != nil {
		return fmt.Errorf("error retrieving stats: %w", err)
	}

	if flagPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		printScores(os.Stdout, board.Feed().Latest(), stats)
		return nil
	}
	return tui.RunScoreboard(board.Feed(), stats, flagPlayer)
}

func printScores(w io.Writer, entries []leaderboard.Entry, stats storage.Stats) {
	fmt.Fprintln(w, "Lane Rush - Top 10")
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Play 'lanerush play' to set the first high score!")
		return
	}

	fmt.Fprintf(w, "  %-4s  %-16s  %-8s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Fprintf(w, "  %-4s  %-16s  %-8s  %s\n", "----", "------", "-----", "----")
	for i, e := range entries {
		fmt.Fprintf(w, "  %-4d  %-16s  %-8d  %s\n", i+1, e.DisplayName, e.Score, e.UpdatedAt.Format("2006-01-02 15:04"))
	}

	if stats.GamesCount > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Runs: %d  Best: %d  Average: %.1f  Last played: %s\n",
			stats.GamesCount, stats.HighScore, stats.AvgScore, stats.LastPlayed.Format("2006-01-02 15:04"))
	}
}
