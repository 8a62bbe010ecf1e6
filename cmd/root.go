package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vibelist/config"
	"vibelist/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vibelist",
	Short: "vibelist curates playlists from your music library with AI backends.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
		})
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
