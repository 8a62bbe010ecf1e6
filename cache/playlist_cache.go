package cache

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"vibelist/logger"
	"vibelist/model"
)

const (
	playlistKeyPrefix = "aiplaylist:"
	playlistTTL       = 24 * time.Hour
)

// PlaylistKey derives the cache key for a generation request. The library
// size is part of the hash so a reloaded library invalidates old entries.
func PlaylistKey(backend, prompt string, librarySize int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s\x00%d", prompt, librarySize)))
	return fmt.Sprintf("%s%s:%x", playlistKeyPrefix, backend, sum)
}

// GetPlaylist looks up a cached generation result. Returns nil on miss or
// when Redis is not configured.
func GetPlaylist(ctx context.Context, key string) *model.PlaylistResponse {
	if RedisClient == nil {
		return nil
	}

	data, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}

	var resp model.PlaylistResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn("discarding unreadable cached playlist",
			logger.String("key", key),
			logger.ErrorField(err))
		RedisClient.Del(ctx, key)
		return nil
	}

	resp.Cached = true
	return &resp
}

// SetPlaylist stores a generation result with a 24h TTL. A nil client or a
// write failure only costs the cache entry.
func SetPlaylist(ctx context.Context, key string, resp *model.PlaylistResponse) {
	if RedisClient == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		logger.Warn("failed to marshal playlist for cache", logger.ErrorField(err))
		return
	}
	if err := RedisClient.Set(ctx, key, data, playlistTTL).Err(); err != nil {
		logger.Warn("failed to cache playlist",
			logger.String("key", key),
			logger.ErrorField(err))
	}
}
