// lanerush is a lane-dodging arcade game for the terminal.
//
// Usage:
//
//	lanerush play            - Play locally
//	lanerush serve           - Start SSH server for remote play
//	lanerush scores          - Show the leaderboard and run stats
//	lanerush profile         - Show or edit your player profile
//	lanerush sim             - Run a headless simulation with an autopilot
//	lanerush config          - Print the default game config
//
// Global flags default to LANERUSH_* environment variables:
//
//	--db <path>       - Database path (LANERUSH_DB, default ~/.lanerush/scores.db)
//	--config <path>   - Game config YAML (LANERUSH_CONFIG)
//	--player <id>     - Player ID for local play (LANERUSH_PLAYER, default $USER)
//	--log-level <lvl> - Log level (LANERUSH_LOG_LEVEL, default info)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lane-rush/internal/config"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagPlayer     string
	flagLogLevel   string
)

// Environment settings are read before any init so flag defaults can use them.
var envSettings, envErr = config.ParseEnv()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lanerush",
	Short: "Lane Rush - dodge traffic in your terminal",
	Long: `Lane Rush is a lane-dodging arcade game. Your car sits at the bottom of
an eight-lane road; traffic comes at you faster the longer you survive.

Available commands:
  play     - Play locally
  serve    - Start SSH server for remote play
  scores   - View the leaderboard
  profile  - Show or edit your profile
  sim      - Run a headless simulation
  config   - Print the default game config

Examples:
  lanerush play
  lanerush play --difficulty hard
  lanerush serve --ssh :2222
  lanerush profile --name "Speedy" --avatar 🏎
  lanerush sim --seed 42 --duration 2m`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return envErr
	},
}

func init() {
	player := envSettings.Player
	if player == "" {
		player = os.Getenv("USER")
	}

	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", envSettings.DBPath, "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", envSettings.ConfigPath, "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", player, "Player ID (empty = anonymous)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", envSettings.LogLevel, "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(configCmd)
}
