package curator

import (
	"fmt"

	"vibelist/core/search"
	"vibelist/logger"
)

// Shared tool-call protocol pieces used by both tool-calling backends. The
// two backends speak different wire schemas but dispatch the same tool
// catalogue against the same search index.

const (
	// maxToolTurns bounds the conversation: a model can oscillate between
	// tool calls indefinitely on an ambiguous request.
	maxToolTurns = 10

	// defaultToolResults is the max_results applied when a tool call
	// leaves it unspecified.
	defaultToolResults = 100

	// overviewSampleSize caps the artist/genre samples in the overview tool.
	overviewSampleSize = 20
)

// toolSpec declares one library-query tool in a wire-schema-neutral form.
// Each backend renders it into its provider's declaration format.
type toolSpec struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

func maxResultsProperty() map[string]any {
	return map[string]any{
		"type":        "number",
		"description": "Maximum number of results to return (default: 100)",
		"default":     defaultToolResults,
	}
}

func toolCatalogue() []toolSpec {
	return []toolSpec{
		{
			Name:        "search_by_artist",
			Description: "Search the music library for tracks by a specific artist. Use this to find all songs by an artist or band.",
			Properties: map[string]any{
				"artist_name": map[string]any{
					"type":        "string",
					"description": "The name of the artist or band to search for (partial matches supported)",
				},
				"max_results": maxResultsProperty(),
			},
			Required: []string{"artist_name"},
		},
		{
			Name:        "search_by_genre",
			Description: "Search the music library for tracks in a specific genre. Use this to find songs by musical style.",
			Properties: map[string]any{
				"genre": map[string]any{
					"type":        "string",
					"description": "The genre to search for (e.g., 'rock', 'jazz', 'classical')",
				},
				"max_results": maxResultsProperty(),
			},
			Required: []string{"genre"},
		},
		{
			Name:        "search_by_album",
			Description: "Search the music library for tracks from a specific album.",
			Properties: map[string]any{
				"album_name": map[string]any{
					"type":        "string",
					"description": "The name of the album to search for (partial matches supported)",
				},
				"max_results": maxResultsProperty(),
			},
			Required: []string{"album_name"},
		},
		{
			Name:        "search_by_title",
			Description: "Search the music library for tracks by song title or keywords in the title.",
			Properties: map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "The song title or keywords to search for (partial matches supported)",
				},
				"max_results": maxResultsProperty(),
			},
			Required: []string{"title"},
		},
		{
			Name:        "search_by_year_range",
			Description: "Search the music library for tracks released within a specific year range.",
			Properties: map[string]any{
				"start_year": map[string]any{
					"type":        "number",
					"description": "The starting year (inclusive)",
				},
				"end_year": map[string]any{
					"type":        "number",
					"description": "The ending year (inclusive)",
				},
				"max_results": maxResultsProperty(),
			},
			Required: []string{"start_year", "end_year"},
		},
		{
			Name:        "get_library_overview",
			Description: "Get an overview of the music library including total tracks, unique artists, genres, and albums. Use this first to understand what's available.",
			Properties:  map[string]any{},
			Required:    []string{},
		},
	}
}

// toolLoopPrompt is the opening user message of the tool-call conversation.
// Unlike the single-shot path the final answer addresses the full library
// with 0-based indices; tools retrieve indices on demand, so there is no
// sampled-subset remapping.
func toolLoopPrompt(userPrompt string, librarySize int) string {
	return fmt.Sprintf("You are a music playlist curator with access to search tools for a music library of %d tracks.\n\n"+
		"User's request: %q\n\n"+
		"Use the provided search tools to find tracks that match the user's request. "+
		"You can search by artist, genre, album, title, or year range. "+
		"Start by using get_library_overview to understand what's available, "+
		"then use specific searches to find matching tracks.\n\n"+
		"Once you've found suitable tracks, respond with a JSON array of track indices (0-based) "+
		"that best match the request. Select 10-50 tracks that fit the description.\n"+
		"Example final response: [42, 156, 892, 1043, ...]",
		librarySize, userPrompt)
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]any, key string, fallback int) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return fallback
}

type searchToolResult struct {
	Found        int   `json:"found"`
	TotalMatches int   `json:"total_matches"`
	Indices      []int `json:"indices"`
}

type overviewToolResult struct {
	TotalTracks   int      `json:"total_tracks"`
	UniqueArtists int      `json:"unique_artists"`
	UniqueGenres  int      `json:"unique_genres"`
	UniqueAlbums  int      `json:"unique_albums"`
	SampleArtists []string `json:"sample_artists"`
	SampleGenres  []string `json:"sample_genres"`
}

func toSearchToolResult(r search.Result) searchToolResult {
	indices := r.Indices
	if indices == nil {
		indices = []int{}
	}
	return searchToolResult{
		Found:        len(r.Indices),
		TotalMatches: r.TotalMatches,
		Indices:      indices,
	}
}

func sampleStrings(values []string, n int) []string {
	if len(values) > n {
		values = values[:n]
	}
	return values
}

// dispatchTool executes one tool invocation against the search index and
// returns a JSON-marshalable result. Unknown tool names return an error
// payload rather than failing the call.
func dispatchTool(ix *search.Index, name string, args map[string]any) any {
	logger.Debug("executing library tool",
		logger.String("tool", name),
		logger.Any("args", args))

	switch name {
	case "search_by_artist":
		return toSearchToolResult(ix.ByArtist(argString(args, "artist_name"), argInt(args, "max_results", defaultToolResults)))
	case "search_by_genre":
		return toSearchToolResult(ix.ByGenre(argString(args, "genre"), argInt(args, "max_results", defaultToolResults)))
	case "search_by_album":
		return toSearchToolResult(ix.ByAlbum(argString(args, "album_name"), argInt(args, "max_results", defaultToolResults)))
	case "search_by_title":
		return toSearchToolResult(ix.ByTitle(argString(args, "title"), argInt(args, "max_results", defaultToolResults)))
	case "search_by_year_range":
		return toSearchToolResult(ix.ByYearRange(
			argInt(args, "start_year", 0),
			argInt(args, "end_year", 0),
			argInt(args, "max_results", defaultToolResults)))
	case "get_library_overview":
		artists := ix.UniqueArtists()
		genres := ix.UniqueGenres()
		albums := ix.UniqueAlbums()
		return overviewToolResult{
			TotalTracks:   ix.Size(),
			UniqueArtists: len(artists),
			UniqueGenres:  len(genres),
			UniqueAlbums:  len(albums),
			SampleArtists: sampleStrings(artists, overviewSampleSize),
			SampleGenres:  sampleStrings(genres, overviewSampleSize),
		}
	}

	return map[string]string{"error": "Unknown tool: " + name}
}
