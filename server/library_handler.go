package server

import (
	"net/http"
	"strconv"

	"vibelist/core/search"
	"vibelist/model"
)

// LibraryHandler handles GET /api/library.
func (h *APIHandler) LibraryHandler(w http.ResponseWriter, r *http.Request) {
	tracks := h.store.Tracks()
	writeJSON(w, http.StatusOK, map[string]any{
		"total":  len(tracks),
		"tracks": tracks,
	})
}

// LibrarySearchHandler handles GET /api/library/search. Exactly one of the
// artist/genre/album/title query parameters selects the field to search;
// year searches take start_year and end_year instead.
func (h *APIHandler) LibrarySearchHandler(w http.ResponseWriter, r *http.Request) {
	tracks := h.store.Tracks()
	ix := search.NewIndex(tracks)

	q := r.URL.Query()
	max := 100
	if s := q.Get("max_results"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "max_results must be a positive integer")
			return
		}
		max = n
	}

	var result search.Result
	switch {
	case q.Get("artist") != "":
		result = ix.ByArtist(q.Get("artist"), max)
	case q.Get("genre") != "":
		result = ix.ByGenre(q.Get("genre"), max)
	case q.Get("album") != "":
		result = ix.ByAlbum(q.Get("album"), max)
	case q.Get("title") != "":
		result = ix.ByTitle(q.Get("title"), max)
	case q.Get("start_year") != "" && q.Get("end_year") != "":
		start, err1 := strconv.Atoi(q.Get("start_year"))
		end, err2 := strconv.Atoi(q.Get("end_year"))
		if err1 != nil || err2 != nil {
			writeError(w, http.StatusBadRequest, "start_year and end_year must be integers")
			return
		}
		result = ix.ByYearRange(start, end, max)
	default:
		writeError(w, http.StatusBadRequest, "one of artist, genre, album, title, or start_year+end_year is required")
		return
	}

	matched := make([]model.Track, len(result.Indices))
	for i, idx := range result.Indices {
		matched[i] = tracks[idx]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_matches": result.TotalMatches,
		"tracks":        matched,
	})
}
