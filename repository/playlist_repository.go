package repository

import (
	"fmt"

	"gorm.io/gorm"

	"vibelist/db"
	"vibelist/model"
)

// PlaylistRepository defines playlist history operations.
type PlaylistRepository interface {
	Save(playlist *model.Playlist) error
	Recent(limit int) ([]model.Playlist, error)
}

// gormPlaylistRepository implements PlaylistRepository on GORM.
type gormPlaylistRepository struct {
	DB *gorm.DB
}

// NewGormPlaylistRepository creates a new instance of gormPlaylistRepository.
func NewGormPlaylistRepository() PlaylistRepository {
	return &gormPlaylistRepository{DB: db.GormDB}
}

// Save persists one generation result.
func (r *gormPlaylistRepository) Save(playlist *model.Playlist) error {
	if err := r.DB.Create(playlist).Error; err != nil {
		return fmt.Errorf("failed to save playlist %s: %w", playlist.ID, err)
	}
	return nil
}

// Recent returns the latest playlists, newest first.
func (r *gormPlaylistRepository) Recent(limit int) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent playlists: %w", err)
	}
	return playlists, nil
}
