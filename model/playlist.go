package model

import "time"

// Playlist is a persisted record of one generation result.
type Playlist struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Prompt     string    `gorm:"size:1024" json:"prompt"`
	Backend    string    `gorm:"size:32" json:"backend"`
	TrackCount int       `json:"trackCount"`
	TracksJSON string    `gorm:"type:text" json:"-"` // JSON array of selected file paths
	CreatedAt  time.Time `json:"createdAt"`
}

// PlaylistResponse is the API shape for a generated playlist.
type PlaylistResponse struct {
	ID      string  `json:"id"`
	Prompt  string  `json:"prompt"`
	Backend string  `json:"backend"`
	Tracks  []Track `json:"tracks"`
	Cached  bool    `json:"cached,omitempty"`
}

// GenerateRequest is the request body for playlist generation.
type GenerateRequest struct {
	Prompt  string `json:"prompt"`
	Backend string `json:"backend,omitempty"` // Overrides the configured default
}

// WebSocketMessage represents a message sent over the streaming endpoint.
type WebSocketMessage struct {
	Type     string            `json:"type"`               // "start", "content", "complete", "error"
	Content  string            `json:"content,omitempty"`  // Text chunk or error message
	Playlist *PlaylistResponse `json:"playlist,omitempty"` // Set on "complete"
}
