package curator

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"vibelist/model"
)

// PromptConfig controls how the library is rendered into a prompt.
type PromptConfig struct {
	MaxTracksInPrompt int
	IncludeArtist     bool
	IncludeAlbum      bool
	IncludeGenre      bool
	IncludeYear       bool
}

// DefaultPromptConfig returns the standard prompt configuration.
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		MaxTracksInPrompt: 1500,
		IncludeArtist:     true,
		IncludeAlbum:      true,
		IncludeGenre:      true,
		IncludeYear:       true,
	}
}

// BuildPrompt renders the user's request plus an enumerated view of the
// library. Libraries larger than MaxTracksInPrompt are downsampled to a
// uniform random subset, sorted ascending so visible row order stays
// monotonic. The returned slice maps 1-based visible row numbers to
// absolute library indices: sampled[i-1] is the library index for row i.
func BuildPrompt(userRequest string, library []model.Track, cfg PromptConfig) (string, []int) {
	var prompt strings.Builder

	prompt.WriteString("You are a music playlist curator. Based on the user's request, " +
		"select songs from the provided library that best match their description.\n\n")
	fmt.Fprintf(&prompt, "User's request: %q\n\n", userRequest)

	var sampled []int
	if len(library) <= cfg.MaxTracksInPrompt {
		sampled = make([]int, len(library))
		for i := range library {
			sampled[i] = i
		}
	} else {
		perm := rand.Perm(len(library))
		sampled = append(sampled, perm[:cfg.MaxTracksInPrompt]...)
		sort.Ints(sampled)

		fmt.Fprintf(&prompt, "Note: Your library has %d tracks. Showing a random sample of %d.\n\n",
			len(library), cfg.MaxTracksInPrompt)
	}

	prompt.WriteString("Available songs in library:\n")

	for row, idx := range sampled {
		track := library[idx]

		fmt.Fprintf(&prompt, "%d. %s", row+1, track.DisplayName())

		if cfg.IncludeArtist && track.Artist != "" {
			fmt.Fprintf(&prompt, " - %s", track.Artist)
		}
		if cfg.IncludeAlbum && track.Album != "" {
			fmt.Fprintf(&prompt, " (%s)", track.Album)
		}
		if cfg.IncludeGenre && track.Genre != "" {
			fmt.Fprintf(&prompt, " [%s]", track.Genre)
		}
		if cfg.IncludeYear && track.Year != 0 {
			fmt.Fprintf(&prompt, " {%d}", track.Year)
		}

		prompt.WriteString("\n")
	}

	prompt.WriteString("\nRespond with ONLY a JSON array of song numbers that match " +
		"the user's request. Select 10-30 songs that best fit the description. " +
		"Example response: [1, 5, 12, 23, 45]\n")

	return prompt.String(), sampled
}

// extractArray slices the first '[' through the last ']' out of free-form
// model output and parses it as a JSON array. Models frequently wrap the
// answer in explanatory prose; the answer is assumed to be the only
// bracketed array present.
func extractArray(raw string) ([]any, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < 0 || start >= end {
		return nil, false
	}

	var values []any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &values); err != nil {
		return nil, false
	}
	return values, true
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ParseRowResponse extracts a JSON integer array from raw model output and
// maps each 1-based row number back to an absolute library index through
// sampled. Out-of-range, non-integer, and duplicate entries are dropped
// silently. Returns an empty slice when no parseable array is found.
func ParseRowResponse(raw string, sampled []int) []int {
	values, ok := extractArray(raw)
	if !ok {
		return nil
	}

	var indices []int
	seen := make(map[int]struct{})
	for _, v := range values {
		row, ok := asInt(v)
		if !ok || row < 1 || row > len(sampled) {
			continue
		}
		idx := sampled[row-1]
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	return indices
}

// ParseAbsoluteResponse extracts a JSON integer array from raw model output
// treating entries as 0-based absolute library indices. Used by the
// tool-call loop, which addresses the full library directly. Invalid and
// duplicate entries are dropped silently.
func ParseAbsoluteResponse(raw string, librarySize int) []int {
	values, ok := extractArray(raw)
	if !ok {
		return nil
	}

	var indices []int
	seen := make(map[int]struct{})
	for _, v := range values {
		idx, ok := asInt(v)
		if !ok || idx < 0 || idx >= librarySize {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	return indices
}
