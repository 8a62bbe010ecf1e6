package repository

import (
	"database/sql"
	"fmt"

	"vibelist/db"
	"vibelist/model"
)

// TrackRepository defines track metadata storage operations.
type TrackRepository interface {
	UpsertTrack(track *model.Track) error
	GetAllTracks() ([]model.Track, error)
	CountTracks() (int, error)
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository() TrackRepository {
	return &mysqlTrackRepository{DB: db.DB}
}

// UpsertTrack inserts a track or refreshes its metadata when the file path
// already exists.
func (r *mysqlTrackRepository) UpsertTrack(track *model.Track) error {
	query := `INSERT INTO tracks (file_path, filename, title, artist, album, genre, year, duration_ms, file_mtime)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             filename = VALUES(filename), title = VALUES(title), artist = VALUES(artist),
	             album = VALUES(album), genre = VALUES(genre), year = VALUES(year),
	             duration_ms = VALUES(duration_ms), file_mtime = VALUES(file_mtime)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpsertTrack: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(track.FilePath, track.Filename, track.Title, track.Artist,
		track.Album, track.Genre, track.Year, track.DurationMs, track.FileMtime)
	if err != nil {
		return fmt.Errorf("failed to execute UpsertTrack for %s: %w", track.FilePath, err)
	}
	return nil
}

// GetAllTracks retrieves every track ordered by file path, the stable order
// the curation engine indexes the library in.
func (r *mysqlTrackRepository) GetAllTracks() ([]model.Track, error) {
	query := `SELECT file_path, filename, title, artist, album, genre, year, duration_ms, file_mtime
	           FROM tracks ORDER BY file_path`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]model.Track, 0)
	for rows.Next() {
		var track model.Track
		err := rows.Scan(&track.FilePath, &track.Filename, &track.Title, &track.Artist,
			&track.Album, &track.Genre, &track.Year, &track.DurationMs, &track.FileMtime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetAllTracks: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllTracks: %w", err)
	}

	return tracks, nil
}

// CountTracks returns the number of stored tracks.
func (r *mysqlTrackRepository) CountTracks() (int, error) {
	var count int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}
