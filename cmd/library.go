package cmd

import (
	"fmt"

	"vibelist/config"
	"vibelist/db"
	"vibelist/library"
	"vibelist/repository"
)

// loadLibrary builds the in-memory track store from the configured source:
// a JSON manifest file, or the tracks table when LIBRARY_SOURCE=mysql.
func loadLibrary(cfg *config.Config) (*library.Store, error) {
	switch cfg.LibrarySource {
	case "manifest", "":
		tracks, err := library.LoadManifest(cfg.LibraryManifest)
		if err != nil {
			return nil, err
		}
		return library.NewStore(tracks), nil

	case "mysql":
		if err := db.ConnectDB(cfg); err != nil {
			return nil, err
		}
		if err := db.InitDB(); err != nil {
			return nil, err
		}
		tracks, err := repository.NewMySQLTrackRepository().GetAllTracks()
		if err != nil {
			return nil, err
		}
		return library.NewStore(tracks), nil
	}

	return nil, fmt.Errorf("unknown library source %q (valid: manifest, mysql)", cfg.LibrarySource)
}
