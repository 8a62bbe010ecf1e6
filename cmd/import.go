package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vibelist/db"
	"vibelist/library"
	"vibelist/logger"
	"vibelist/repository"
)

var importManifest string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a library manifest into MySQL",
	Long:  `Load a JSON track manifest and upsert every track into the MySQL tracks table, so the server can run with LIBRARY_SOURCE=mysql.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifest := importManifest
		if manifest == "" {
			manifest = cfg.LibraryManifest
		}

		tracks, err := library.LoadManifest(manifest)
		if err != nil {
			logger.Fatal("failed to load manifest", logger.ErrorField(err))
		}

		if err := db.ConnectDB(cfg); err != nil {
			logger.Fatal("failed to connect to database", logger.ErrorField(err))
		}
		defer db.CloseDB()
		if err := db.InitDB(); err != nil {
			logger.Fatal("failed to initialize database", logger.ErrorField(err))
		}

		repo := repository.NewMySQLTrackRepository()
		imported := 0
		for i := range tracks {
			if err := repo.UpsertTrack(&tracks[i]); err != nil {
				logger.Warn("skipping track",
					logger.String("filePath", tracks[i].FilePath),
					logger.ErrorField(err))
				continue
			}
			imported++
		}

		total, err := repo.CountTracks()
		if err != nil {
			logger.Warn("failed to count tracks", logger.ErrorField(err))
		}

		fmt.Printf("Imported %d/%d tracks (%d total in database).\n", imported, len(tracks), total)
	},
}

func init() {
	importCmd.Flags().StringVar(&importManifest, "manifest", "", "path to the manifest JSON (defaults to LIBRARY_MANIFEST)")
	rootCmd.AddCommand(importCmd)
}
