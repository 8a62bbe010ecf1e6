package model

// Track represents a single audio item's metadata in the music library.
// The curation engine only ever reads tracks; it never mutates or copies them.
type Track struct {
	FilePath   string `json:"filepath"` // Full path, may be a remote-storage reference
	Filename   string `json:"filename"` // Filename only, for display
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Year       int    `json:"year,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	FileMtime  int64  `json:"file_mtime,omitempty"` // Unix seconds, for cache invalidation
}

// DisplayName returns the track title, falling back to the filename when
// the file carried no title tag.
func (t Track) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Filename
}
