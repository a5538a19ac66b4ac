package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

// loadGameConfig loads the game config and applies the difficulty preset.
func loadGameConfig() (config.LaneRushConfig, error) {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.LaneRushConfig{}, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.LaneRushConfig{}, err
	}
	config.ApplyPreset(&cfg, preset)
	return cfg, nil
}

// newLogger creates a logger writing to w at the configured level.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
	}
	return logger
}

// openLogFile opens ~/.lanerush/lanerush.log for appending. Local play
// logs there to keep the alternate screen clean.
func openLogFile() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot get home directory: %w", err)
	}
	dir := filepath.Join(home, ".lanerush")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return os.OpenFile(filepath.Join(dir, "lanerush.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// newBoard wires the leaderboard service to the store and loads the
// current ranking.
func newBoard(store *storage.Store, cfg config.LaneRushConfig, logger *log.Logger) *leaderboard.Service {
	board := leaderboard.NewService(store, leaderboard.NewFeed(), cfg.Leaderboard.TopN, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := board.Refresh(ctx); err != nil {
		logger.Warn("could not load leaderboard", "err", err)
	}
	return board
}
