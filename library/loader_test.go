package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `[
		{"filepath": "/m/heroes.mp3", "filename": "heroes.mp3", "title": "Heroes", "artist": "David Bowie", "genre": "Rock", "year": 1977},
		{"filepath": "/m/unknown.mp3"}
	]`)

	tracks, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "David Bowie", tracks[0].Artist)
	assert.Equal(t, 1977, tracks[0].Year)
	// Missing filename falls back to the file path's base name.
	assert.Equal(t, "unknown.mp3", tracks[1].Filename)
}

func TestLoadManifestDropsEntriesWithoutPath(t *testing.T) {
	path := writeManifest(t, `[
		{"title": "Orphan"},
		{"filepath": "/m/kept.mp3", "title": "Kept"}
	]`)

	tracks, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Kept", tracks[0].Title)
}

func TestLoadManifestErrors(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeManifest(t, `{"not": "an array"}`)
	_, err = LoadManifest(path)
	assert.Error(t, err)
}

func TestStoreSnapshotIsolation(t *testing.T) {
	path := writeManifest(t, `[{"filepath": "/m/a.mp3", "title": "A"}]`)
	tracks, err := LoadManifest(path)
	require.NoError(t, err)

	store := NewStore(tracks)
	snapshot := store.Tracks()

	store.Replace(nil)
	assert.Equal(t, 0, store.Size())
	// The earlier snapshot is unaffected by the reload.
	require.Len(t, snapshot, 1)
	assert.Equal(t, "A", snapshot[0].Title)
}
