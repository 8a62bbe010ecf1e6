package search

import (
	"sort"
	"strings"

	"vibelist/model"
)

// Result holds the outcome of one search operation. Indices is capped at the
// requested maximum while TotalMatches counts every match in the library.
type Result struct {
	Indices      []int `json:"indices"`
	TotalMatches int   `json:"total_matches"`
}

// Index answers filtered lookups over a music library. It borrows the track
// slice rather than copying it; callers must keep the slice stable for the
// lifetime of the index. All operations are read-only.
type Index struct {
	library []model.Track
}

// NewIndex creates a search index over the given library.
func NewIndex(library []model.Track) *Index {
	return &Index{library: library}
}

// Size returns the number of tracks in the indexed library.
func (ix *Index) Size() int {
	return len(ix.library)
}

func containsIgnoreCase(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// searchField scans the library for tracks whose field matches the query.
// Tracks with the field absent never match. An empty query matches every
// track that has the field present. Past the cap the scan continues so
// TotalMatches stays accurate.
func (ix *Index) searchField(query string, maxResults int, field func(model.Track) string) Result {
	var result Result
	for i, track := range ix.library {
		v := field(track)
		if v == "" || !containsIgnoreCase(v, query) {
			continue
		}
		result.TotalMatches++
		if len(result.Indices) < maxResults {
			result.Indices = append(result.Indices, i)
		}
	}
	return result
}

// ByArtist searches by artist name (case-insensitive partial match).
func (ix *Index) ByArtist(query string, maxResults int) Result {
	return ix.searchField(query, maxResults, func(t model.Track) string { return t.Artist })
}

// ByGenre searches by genre (case-insensitive partial match).
func (ix *Index) ByGenre(query string, maxResults int) Result {
	return ix.searchField(query, maxResults, func(t model.Track) string { return t.Genre })
}

// ByAlbum searches by album name (case-insensitive partial match).
func (ix *Index) ByAlbum(query string, maxResults int) Result {
	return ix.searchField(query, maxResults, func(t model.Track) string { return t.Album })
}

// ByTitle searches by track title (case-insensitive partial match).
func (ix *Index) ByTitle(query string, maxResults int) Result {
	return ix.searchField(query, maxResults, func(t model.Track) string { return t.Title })
}

// ByYearRange searches for tracks released within [startYear, endYear].
// Tracks without a year never match.
func (ix *Index) ByYearRange(startYear, endYear, maxResults int) Result {
	var result Result
	for i, track := range ix.library {
		if track.Year == 0 || track.Year < startYear || track.Year > endYear {
			continue
		}
		result.TotalMatches++
		if len(result.Indices) < maxResults {
			result.Indices = append(result.Indices, i)
		}
	}
	return result
}

func (ix *Index) uniqueField(field func(model.Track) string) []string {
	seen := make(map[string]struct{})
	for _, track := range ix.library {
		if v := field(track); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// UniqueArtists returns all distinct artist names in the library, sorted.
func (ix *Index) UniqueArtists() []string {
	return ix.uniqueField(func(t model.Track) string { return t.Artist })
}

// UniqueGenres returns all distinct genres in the library, sorted.
func (ix *Index) UniqueGenres() []string {
	return ix.uniqueField(func(t model.Track) string { return t.Genre })
}

// UniqueAlbums returns all distinct album names in the library, sorted.
func (ix *Index) UniqueAlbums() []string {
	return ix.uniqueField(func(t model.Track) string { return t.Album })
}

// Intersect combines two results keeping only indices present in both.
// TotalMatches is recomputed as the size of the combined set; it does not
// re-query the library.
func Intersect(a, b Result) Result {
	inB := make(map[int]struct{}, len(b.Indices))
	for _, idx := range b.Indices {
		inB[idx] = struct{}{}
	}

	var result Result
	for _, idx := range a.Indices {
		if _, ok := inB[idx]; ok {
			result.Indices = append(result.Indices, idx)
		}
	}
	result.TotalMatches = len(result.Indices)
	return result
}

// Union combines two results keeping indices present in either, ascending.
func Union(a, b Result) Result {
	combined := make(map[int]struct{}, len(a.Indices)+len(b.Indices))
	for _, idx := range a.Indices {
		combined[idx] = struct{}{}
	}
	for _, idx := range b.Indices {
		combined[idx] = struct{}{}
	}

	var result Result
	result.Indices = make([]int, 0, len(combined))
	for idx := range combined {
		result.Indices = append(result.Indices, idx)
	}
	sort.Ints(result.Indices)
	result.TotalMatches = len(result.Indices)
	return result
}
