package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylistKeyDeterministic(t *testing.T) {
	a := PlaylistKey("keyword", "80s rock", 1000)
	b := PlaylistKey("keyword", "80s rock", 1000)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "aiplaylist:keyword:"))
}

func TestPlaylistKeyVariesByInputs(t *testing.T) {
	base := PlaylistKey("keyword", "80s rock", 1000)

	assert.NotEqual(t, base, PlaylistKey("anthropic", "80s rock", 1000))
	assert.NotEqual(t, base, PlaylistKey("keyword", "90s rock", 1000))
	// A reloaded library of a different size invalidates old entries.
	assert.NotEqual(t, base, PlaylistKey("keyword", "80s rock", 1001))
}

func TestPlaylistCacheDisabledWithoutRedis(t *testing.T) {
	RedisClient = nil

	key := PlaylistKey("keyword", "anything", 10)
	assert.Nil(t, GetPlaylist(context.Background(), key))
	// SetPlaylist must be a no-op, not a panic.
	SetPlaylist(context.Background(), key, nil)
}
