package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/platform/tui"
	"github.com/vovakirdan/lane-rush/internal/player"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

// Smallest terminal that fits the track and the side panel
const (
	minPlayWidth  = 84
	minPlayHeight = 16
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Lane Rush",
	Long: `Start a local game.

Controls:
  Left/A, Right/D - Change lane
  Enter/Space     - Start
  P/Esc           - Pause / resume
  R               - Back to the title screen
  Tab             - Toggle leaderboard panel
  Q/Ctrl+C        - Quit

Difficulty options:
  easy   - Slower traffic, gentler spawn curve
  normal - Default settings
  hard   - Faster traffic, multi-car waves sooner
  fixed  - No progression, level 1 forever

Examples:
  lanerush play
  lanerush play --difficulty hard
  lanerush play --player alice
  lanerush play --config ./my-lanerush.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig()
	if err != nil {
		return err
	}

	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil && (w < minPlayWidth || h < minPlayHeight) {
		fmt.Fprintf(os.Stderr, "Warning: terminal is %dx%d, at least %dx%d is recommended\n", w, h, minPlayWidth, minPlayHeight)
	}

	var logOut io.Writer = io.Discard
	if f, fileErr := openLogFile(); fileErr == nil {
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, "lanerush")

	opts := tui.Options{
		Config:   cfg,
		Logger:   logger,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
	} else {
		defer store.Close()
		opts.Board = newBoard(store, cfg, logger)
		opts.Runs = store
		opts.Player = loadPlayer(store, logger)
	}

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}

// loadPlayer returns the profile of the --player ID, creating one on first
// play. An empty ID plays anonymously.
func loadPlayer(store *storage.Store, logger *log.Logger) player.Profile {
	if flagPlayer == "" {
		return player.Profile{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p, err := player.Ensure(ctx, store, store, flagPlayer, flagPlayer)
	if err != nil {
		logger.Warn("could not load profile, playing anonymously", "player", flagPlayer, "err", err)
		return player.Profile{}
	}
	return p
}

// Compile-time checks that storage satisfies the collaborators it is
// wired to.
var (
	_ leaderboard.Store = (*storage.Store)(nil)
	_ tui.RunRecorder   = (*storage.Store)(nil)
	_ tui.ProfileStore  = (*storage.Store)(nil)
)
