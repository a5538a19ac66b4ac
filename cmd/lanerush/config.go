package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lane-rush/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default game config",
	Long: `Print the built-in game config as YAML. Save it to
~/.lanerush/configs/lanerush.yaml or ./configs/lanerush.yaml and edit it to
tune the game, or pass it with --config.

Examples:
  lanerush config > ~/.lanerush/configs/lanerush.yaml`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		_, err := os.Stdout.Write(config.DefaultYAML())
		return err
	},
}
