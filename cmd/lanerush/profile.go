package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lane-rush/internal/player"
	"github.com/vovakirdan/lane-rush/internal/storage"
)

const recentRunsShown = 5

var (
	flagName   string
	flagAvatar string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your player profile",
	Long: `Show the profile of --player, or update its display name and avatar.
Changes also appear on the leaderboard.

Examples:
  lanerush profile
  lanerush profile --name "Speedy"
  lanerush profile --player alice --avatar 🏎`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&flagName, "name", "", "New display name")
	profileCmd.Flags().StringVar(&flagAvatar, "avatar", "", "New avatar (an emoji works best)")
}

func runProfile(cmd *cobra.Command, _ []string) error {
	if flagPlayer == "" {
		return errors.New("no player: set --player or LANERUSH_PLAYER")
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening scores database: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := player.Ensure(ctx, store, store, flagPlayer, flagPlayer)
	if err != nil {
		return fmt.Errorf("error loading profile: %w", err)
	}

	changed := false
	if cmd.Flags().Changed("name") {
		if flagName == "" {
			return errors.New("display name cannot be empty")
		}
		p.DisplayName = flagName
		changed = true
	}
	if cmd.Flags().Changed("avatar") {
		p.Avatar = flagAvatar
		changed = true
	}
	if changed {
		if err := store.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("error saving profile: %w", err)
		}
	}

	stats, err := store.Stats(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("error retrieving stats: %w", err)
	}

	fmt.Printf("%s %s (%s)\n", p.AvatarOrDefault(), p.DisplayName, p.ID)
	fmt.Printf("Best:  %d\n", p.HighScore)
	fmt.Printf("Runs:  %d\n", stats.GamesCount)
	if stats.GamesCount > 0 {
		fmt.Printf("Avg:   %.1f\n", stats.AvgScore)
		fmt.Printf("Last:  %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
	}

	runs, err := store.RecentRuns(ctx, p.ID, recentRunsShown)
	if err != nil {
		return fmt.Errorf("error retrieving runs: %w", err)
	}
	if len(runs) > 0 {
		fmt.Println("\nRecent runs:")
		for _, r := range runs {
			fmt.Printf("  %s  %5d  level %d  %s\n",
				r.PlayedAt.Format("2006-01-02 15:04"), r.Score, r.Level, r.Duration.Round(time.Second))
		}
	}
	return nil
}
