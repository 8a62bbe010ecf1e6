package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibelist/model"
)

func testLibrary() []model.Track {
	return []model.Track{
		{FilePath: "/m/bowie1.mp3", Title: "Heroes", Artist: "David Bowie", Album: "Heroes", Genre: "Rock", Year: 1977},
		{FilePath: "/m/bowie2.mp3", Title: "Let's Dance", Artist: "David Bowie", Album: "Let's Dance", Genre: "Rock", Year: 1983},
		{FilePath: "/m/daft1.mp3", Title: "One More Time", Artist: "Daft Punk", Album: "Discovery", Genre: "Electronic", Year: 2001},
		{FilePath: "/m/daft2.mp3", Title: "Get Lucky", Artist: "Daft Punk", Album: "Random Access Memories", Genre: "Electronic", Year: 2013},
		{FilePath: "/m/unknown.mp3", Filename: "unknown.mp3"},
		{FilePath: "/m/miles.mp3", Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue", Genre: "Jazz", Year: 1959},
	}
}

func TestByArtistPartialCaseInsensitive(t *testing.T) {
	ix := NewIndex(testLibrary())

	result := ix.ByArtist("david", 10)
	assert.Equal(t, []int{0, 1}, result.Indices)
	assert.Equal(t, 2, result.TotalMatches)

	// "Davis" also contains "davi"
	result = ix.ByArtist("davi", 10)
	assert.Equal(t, []int{0, 1, 5}, result.Indices)
}

func TestSearchCapKeepsTrueTotal(t *testing.T) {
	ix := NewIndex(testLibrary())

	result := ix.ByGenre("", 2)
	require.Len(t, result.Indices, 2)
	// Five tracks carry a genre; the capped scan still counts them all.
	assert.Equal(t, 5, result.TotalMatches)
}

func TestEmptyQueryMatchesPresentFieldOnly(t *testing.T) {
	ix := NewIndex(testLibrary())

	result := ix.ByArtist("", 10)
	assert.Equal(t, 5, result.TotalMatches)
	assert.NotContains(t, result.Indices, 4)
}

func TestByYearRange(t *testing.T) {
	ix := NewIndex(testLibrary())

	result := ix.ByYearRange(1980, 2010, 10)
	assert.Equal(t, []int{1, 2}, result.Indices)

	// A track without a year must not match a range including zero.
	result = ix.ByYearRange(0, 3000, 10)
	assert.NotContains(t, result.Indices, 4)
	assert.Equal(t, 5, result.TotalMatches)
}

func TestUniqueFieldsSorted(t *testing.T) {
	ix := NewIndex(testLibrary())

	assert.Equal(t, []string{"Daft Punk", "David Bowie", "Miles Davis"}, ix.UniqueArtists())
	assert.Equal(t, []string{"Electronic", "Jazz", "Rock"}, ix.UniqueGenres())
	assert.Len(t, ix.UniqueAlbums(), 5)
}

func TestIntersect(t *testing.T) {
	a := Result{Indices: []int{0, 1, 2, 3}, TotalMatches: 4}
	b := Result{Indices: []int{2, 3, 5}, TotalMatches: 3}

	got := Intersect(a, b)
	assert.Equal(t, []int{2, 3}, got.Indices)
	assert.Equal(t, 2, got.TotalMatches)
}

func TestUnionSortedDeduplicated(t *testing.T) {
	a := Result{Indices: []int{5, 1}, TotalMatches: 2}
	b := Result{Indices: []int{1, 3}, TotalMatches: 2}

	got := Union(a, b)
	assert.Equal(t, []int{1, 3, 5}, got.Indices)
	assert.Equal(t, 3, got.TotalMatches)
}

func TestEmptyLibrary(t *testing.T) {
	ix := NewIndex(nil)

	assert.Equal(t, 0, ix.Size())
	result := ix.ByArtist("anything", 10)
	assert.Empty(t, result.Indices)
	assert.Zero(t, result.TotalMatches)
}
