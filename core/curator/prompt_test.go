package curator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibelist/model"
)

func promptLibrary(n int) []model.Track {
	tracks := make([]model.Track, n)
	for i := range tracks {
		tracks[i] = model.Track{
			FilePath: fmt.Sprintf("/m/%03d.mp3", i),
			Title:    fmt.Sprintf("Song %d", i),
			Artist:   fmt.Sprintf("Artist %d", i),
			Album:    fmt.Sprintf("Album %d", i),
			Genre:    "Rock",
			Year:     1990 + i%30,
		}
	}
	return tracks
}

func TestBuildPromptSmallLibraryEnumeratesAll(t *testing.T) {
	library := promptLibrary(5)

	prompt, sampled := BuildPrompt("mellow evening songs", library, DefaultPromptConfig())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, sampled)
	assert.Contains(t, prompt, `User's request: "mellow evening songs"`)
	assert.Contains(t, prompt, "1. Song 0 - Artist 0 (Album 0) [Rock] {1990}")
	assert.Contains(t, prompt, "5. Song 4 - Artist 4 (Album 4) [Rock] {1994}")
	assert.Contains(t, prompt, "Respond with ONLY a JSON array")
	assert.NotContains(t, prompt, "random sample")
}

func TestBuildPromptLargeLibrarySamples(t *testing.T) {
	library := promptLibrary(100)
	cfg := DefaultPromptConfig()
	cfg.MaxTracksInPrompt = 10

	prompt, sampled := BuildPrompt("anything", library, cfg)

	require.Len(t, sampled, 10)
	assert.Contains(t, prompt, "Your library has 100 tracks. Showing a random sample of 10.")

	// Sampled indices are unique and ascending so row order stays monotonic.
	for i := 1; i < len(sampled); i++ {
		assert.Greater(t, sampled[i], sampled[i-1])
	}
}

func TestBuildPromptOmitsAbsentFields(t *testing.T) {
	library := []model.Track{
		{FilePath: "/m/a.mp3", Filename: "a.mp3"},
	}

	prompt, _ := BuildPrompt("anything", library, DefaultPromptConfig())

	assert.Contains(t, prompt, "1. a.mp3\n")
	assert.NotContains(t, prompt, "(")
	assert.NotContains(t, prompt, "{0}")
}

func TestParseRowResponseMapsThroughSample(t *testing.T) {
	sampled := []int{10, 20, 30, 40}

	indices := ParseRowResponse("[1, 3, 4]", sampled)
	assert.Equal(t, []int{10, 30, 40}, indices)
}

func TestParseRowResponseIgnoresProse(t *testing.T) {
	sampled := []int{7, 8, 9}
	raw := "Sure! Based on your request I picked these:\n[2, 1]\nEnjoy the music."

	indices := ParseRowResponse(raw, sampled)
	assert.Equal(t, []int{8, 7}, indices)
}

func TestParseRowResponseDropsInvalidEntries(t *testing.T) {
	sampled := []int{5, 6, 7}

	// Out-of-range rows, zero, non-integers, and duplicates all drop silently.
	indices := ParseRowResponse(`[0, 1, 99, 2.5, 2, 1, -3]`, sampled)
	assert.Equal(t, []int{5, 6}, indices)
}

func TestParseRowResponseNoArray(t *testing.T) {
	assert.Nil(t, ParseRowResponse("I could not find anything suitable.", []int{1}))
	assert.Nil(t, ParseRowResponse("", []int{1}))
	assert.Nil(t, ParseRowResponse("][", []int{1}))
}

func TestParseAbsoluteResponse(t *testing.T) {
	indices := ParseAbsoluteResponse("Here you go: [0, 42, 99, 100, 42]", 100)
	assert.Equal(t, []int{0, 42, 99}, indices)
}

func TestParseAbsoluteResponseEmptyArray(t *testing.T) {
	indices := ParseAbsoluteResponse("[]", 100)
	assert.Empty(t, indices)
}

func TestRowRoundTrip(t *testing.T) {
	library := promptLibrary(200)
	cfg := DefaultPromptConfig()
	cfg.MaxTracksInPrompt = 50

	prompt, sampled := BuildPrompt("rock", library, cfg)

	// Answer with every visible row; the mapping must land on exactly the
	// sampled tracks, in order.
	rows := make([]string, len(sampled))
	for i := range sampled {
		rows[i] = fmt.Sprint(i + 1)
	}
	raw := "[" + strings.Join(rows, ", ") + "]"

	assert.Equal(t, sampled, ParseRowResponse(raw, sampled))
	assert.NotEmpty(t, prompt)
}
