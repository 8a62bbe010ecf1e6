package curator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibelist/model"
)

func newTestOpenAIBackend(baseURL string) *OpenAIBackend {
	b := NewOpenAIBackend("test-key", "gpt-test", baseURL, 2000, 0.7)
	b.retryDelay = time.Millisecond
	return b
}

func TestOpenAISingleShot(t *testing.T) {
	library := promptLibrary(5)

	var gotReq model.OpenAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(openAITextResponse("My picks: [1, 3]"))
	}))
	defer srv.Close()

	b := newTestOpenAIBackend(srv.URL)
	indices, err := b.Generate(context.Background(), "rock", library, nil, false)
	require.NoError(t, err)
	// Rows are 1-based over the enumerated library.
	assert.Equal(t, []int{0, 2}, indices)

	assert.Equal(t, "gpt-test", gotReq.Model)
	assert.InDelta(t, 0.7, gotReq.Temperature, 1e-9)
	assert.Equal(t, 1024, gotReq.MaxTokens)
	assert.Empty(t, gotReq.Tools)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, `User's request: "rock"`)
	assert.Contains(t, gotReq.Messages[0].Content, "1. Song 0 - Artist 0")
}

func TestOpenAISingleShotRetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(openAITextResponse("[2]"))
	}))
	defer srv.Close()

	b := newTestOpenAIBackend(srv.URL)
	indices, err := b.Generate(context.Background(), "anything", promptLibrary(5), nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, indices)
	assert.Equal(t, 2, calls)
}

func TestOpenAISingleShotGivesUpAfterTwoAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "still down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := newTestOpenAIBackend(srv.URL)
	_, err := b.Generate(context.Background(), "anything", promptLibrary(5), nil, false)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, 2, calls)
}

func TestOpenAISingleShotStreamsFinalContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openAITextResponse("Answer: [1]"))
	}))
	defer srv.Close()

	var chunks []string
	var finals []bool
	stream := func(chunk string, final bool) {
		chunks = append(chunks, chunk)
		finals = append(finals, final)
	}

	b := newTestOpenAIBackend(srv.URL)
	_, err := b.Generate(context.Background(), "anything", promptLibrary(5), stream, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Answer: [1]", chunks[0])
	assert.True(t, finals[0])
}

func TestOpenAISingleShotNoParseableArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openAITextResponse("Nothing in your library fits."))
	}))
	defer srv.Close()

	b := newTestOpenAIBackend(srv.URL)
	_, err := b.Generate(context.Background(), "anything", promptLibrary(5), nil, false)
	assert.ErrorIs(t, err, ErrNoParseableArray)
}

func TestOpenAISingleShotMissingKey(t *testing.T) {
	b := NewOpenAIBackend("", "gpt-test", "http://unused", 2000, 0.7)
	_, err := b.Generate(context.Background(), "anything", promptLibrary(5), nil, false)
	assert.ErrorIs(t, err, ErrMissingCredential)
}
