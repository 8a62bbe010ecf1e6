package curator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"vibelist/logger"
	"vibelist/model"
)

// KeywordBackend scores tracks against keywords extracted from the request.
// It needs no network access and is the fallback when no model is available.
type KeywordBackend struct {
	MinScore   float64 // Tracks must score strictly above this (default 0)
	MaxResults int     // Cap on returned tracks (default 50)
}

// NewKeywordBackend creates a keyword backend with default thresholds.
func NewKeywordBackend() *KeywordBackend {
	return &KeywordBackend{MinScore: 0, MaxResults: 50}
}

// Name returns the backend name.
func (b *KeywordBackend) Name() string { return "keyword" }

// Validate always succeeds; the keyword backend has no external dependencies.
func (b *KeywordBackend) Validate() error { return nil }

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "will": {}, "with": {},
	"songs": {}, "music": {}, "tracks": {}, "playlist": {},
}

// normalizeText lowercases and replaces non-alphanumeric runes with spaces.
func normalizeText(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out.WriteRune(unicode.ToLower(r))
		default:
			out.WriteRune(' ')
		}
	}
	return out.String()
}

// extractKeywords tokenizes the request, dropping stop words and tokens
// shorter than two characters. Returns keywords in sorted order.
func extractKeywords(text string) []string {
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(normalizeText(text)) {
		if len(word) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		seen[word] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return keywords
}

// matchesYear reports whether a keyword matches a release year. Besides the
// exact 4-digit year it recognizes decade shorthand ("80s" matches 1980-1989)
// and era words: recent/new/modern (>= 2015), classic/old/vintage (<= 1990).
func matchesYear(keyword string, year int) bool {
	if year == 0 {
		return false
	}
	yearStr := strconv.Itoa(year)

	if keyword == yearStr {
		return true
	}

	if len(keyword) == 3 && keyword[1] == '0' && keyword[2] == 's' {
		if len(yearStr) >= 3 && yearStr[2] == keyword[0] {
			return true
		}
	}

	switch keyword {
	case "recent", "new", "modern":
		return year >= 2015
	case "classic", "old", "vintage":
		return year <= 1990
	}

	return false
}

// Keyword match weights per field.
const (
	artistWeight = 5.0
	genreWeight  = 4.0
	albumWeight  = 2.0
	titleWeight  = 2.0
	yearWeight   = 3.0
)

type trackScore struct {
	index  int
	score  float64
	reason string
}

// scoreTrack computes the weighted keyword score for one track and a short
// human-readable reason naming up to three matches.
func scoreTrack(track model.Track, keywords []string) (float64, string) {
	artist := normalizeText(track.Artist)
	title := normalizeText(track.Title)
	album := normalizeText(track.Album)
	genre := normalizeText(track.Genre)

	var score float64
	var matches []string

	for _, keyword := range keywords {
		if artist != "" && strings.Contains(artist, keyword) {
			score += artistWeight
			matches = append(matches, "artist:"+keyword)
		}
		if genre != "" && strings.Contains(genre, keyword) {
			score += genreWeight
			matches = append(matches, "genre:"+keyword)
		}
		if album != "" && strings.Contains(album, keyword) {
			score += albumWeight
			matches = append(matches, "album:"+keyword)
		}
		if title != "" && strings.Contains(title, keyword) {
			score += titleWeight
			matches = append(matches, "title:"+keyword)
		}
		if matchesYear(keyword, track.Year) {
			score += yearWeight
			matches = append(matches, "year:"+keyword)
		}
	}

	var reason string
	if len(matches) > 0 {
		shown := matches
		if len(shown) > 3 {
			shown = shown[:3]
		}
		reason = "Matched: " + strings.Join(shown, ", ")
		if len(matches) > 3 {
			reason += "..."
		}
	}

	return score, reason
}

// Generate scores every track against the extracted keywords, keeps those
// scoring strictly above MinScore, and returns up to MaxResults indices in
// descending score order. Ties keep original library order.
func (b *KeywordBackend) Generate(ctx context.Context, userPrompt string, library []model.Track, stream StreamFunc, verbose bool) ([]int, error) {
	if len(library) == 0 {
		return nil, ErrEmptyLibrary
	}

	keywords := extractKeywords(userPrompt)
	if len(keywords) == 0 {
		return nil, ErrEmptyKeywords
	}

	logger.Info("keyword backend generating playlist",
		logger.String("prompt", userPrompt),
		logger.Int("libraryTracks", len(library)),
		logger.Int("keywords", len(keywords)))
	if verbose {
		logger.Debug("extracted keywords", logger.String("keywords", strings.Join(keywords, ", ")))
	}

	scored := make([]trackScore, 0, len(library))
	for i, track := range library {
		score, reason := scoreTrack(track, keywords)
		if score > b.MinScore {
			scored = append(scored, trackScore{index: i, score: score, reason: reason})
		}
	}

	if len(scored) == 0 {
		return nil, ErrNoKeywordMatches
	}

	// Stable so equal scores keep library order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > b.MaxResults {
		scored = scored[:b.MaxResults]
	}

	if verbose {
		for i, ts := range scored {
			if i >= 10 {
				break
			}
			track := library[ts.index]
			logger.Debug("keyword match",
				logger.Int("rank", i+1),
				logger.String("artist", track.Artist),
				logger.String("title", track.DisplayName()),
				logger.Float64("score", ts.score),
				logger.String("reason", ts.reason))
		}
	}

	indices := make([]int, len(scored))
	var summary strings.Builder
	for i, ts := range scored {
		indices[i] = ts.index
		fmt.Fprintf(&summary, "%d. %s - %s\n", i+1, library[ts.index].Artist, library[ts.index].DisplayName())
	}

	emit(stream, summary.String(), true)

	logger.Info("keyword backend generated playlist", logger.Int("tracks", len(indices)))
	return indices, nil
}
