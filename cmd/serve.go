package cmd

import (
	"github.com/spf13/cobra"

	"vibelist/logger"
	"vibelist/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playlist curation HTTP server",
	Long:  `Start the HTTP server exposing playlist generation, history, and library search, plus a WebSocket streaming endpoint.`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := loadLibrary(cfg)
		if err != nil {
			logger.Fatal("failed to load library", logger.ErrorField(err))
		}
		server.Start(cfg, store, nil)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
