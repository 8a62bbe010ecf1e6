package curator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibelist/model"
)

func anthropicTextResponse(text string) model.AnthropicResponse {
	return model.AnthropicResponse{
		ID:         "msg_test",
		Role:       "assistant",
		StopReason: "end_turn",
		Content:    []model.AnthropicContentBlock{{Type: "text", Text: text}},
	}
}

func anthropicToolUseResponse(id, name, input string) model.AnthropicResponse {
	return model.AnthropicResponse{
		ID:         "msg_test",
		Role:       "assistant",
		StopReason: "tool_use",
		Content: []model.AnthropicContentBlock{
			{Type: "tool_use", ID: id, Name: name, Input: json.RawMessage(input)},
		},
	}
}

func TestAnthropicToolLoop(t *testing.T) {
	library := keywordLibrary()

	var requests []model.AnthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		var req model.AnthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		var resp model.AnthropicResponse
		switch len(requests) {
		case 1:
			resp = anthropicToolUseResponse("toolu_1", "search_by_artist", `{"artist_name": "bowie"}`)
		default:
			resp = anthropicTextResponse("Here is your playlist: [0, 2]")
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	b := NewAnthropicBackend("test-key", "claude-test", srv.URL)
	indices, err := b.Generate(context.Background(), "bowie classics", library, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, indices)

	require.Len(t, requests, 2)
	assert.Len(t, requests[0].Tools, 6)

	// Second request carries the echoed assistant turn plus the tool result.
	second := requests[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "assistant", second.Messages[1].Role)
	assert.Equal(t, "user", second.Messages[2].Role)

	resultJSON, err := json.Marshal(second.Messages[2].Content)
	require.NoError(t, err)
	var blocks []model.AnthropicContentBlock
	require.NoError(t, json.Unmarshal(resultJSON, &blocks))
	require.Len(t, blocks, 1)
	assert.Equal(t, "tool_result", blocks[0].Type)
	assert.Equal(t, "toolu_1", blocks[0].ToolUseID)

	var result searchToolResult
	require.NoError(t, json.Unmarshal([]byte(blocks[0].Content), &result))
	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 1, result.TotalMatches)
	assert.Equal(t, []int{0}, result.Indices)
}

func TestAnthropicOverviewReportsLibrarySize(t *testing.T) {
	library := keywordLibrary()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var resp model.AnthropicResponse
		if calls == 1 {
			resp = anthropicToolUseResponse("toolu_1", "get_library_overview", `{}`)
		} else {
			var req model.AnthropicRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			resultJSON, err := json.Marshal(req.Messages[2].Content)
			require.NoError(t, err)
			var blocks []model.AnthropicContentBlock
			require.NoError(t, json.Unmarshal(resultJSON, &blocks))

			var overview overviewToolResult
			require.NoError(t, json.Unmarshal([]byte(blocks[0].Content), &overview))
			assert.Equal(t, len(library), overview.TotalTracks)
			assert.Equal(t, 3, overview.UniqueArtists)
			assert.Len(t, overview.SampleArtists, 3)

			resp = anthropicTextResponse("[1]")
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	b := NewAnthropicBackend("test-key", "claude-test", srv.URL)
	indices, err := b.Generate(context.Background(), "anything", library, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, indices)
}

func TestAnthropicTurnBudget(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(anthropicToolUseResponse("toolu_n", "get_library_overview", `{}`))
	}))
	defer srv.Close()

	b := NewAnthropicBackend("test-key", "claude-test", srv.URL)
	_, err := b.Generate(context.Background(), "anything", keywordLibrary(), nil, false)
	assert.ErrorIs(t, err, ErrTurnBudgetExceeded)
	assert.Equal(t, maxToolTurns, calls)
}

func TestAnthropicMissingKey(t *testing.T) {
	b := NewAnthropicBackend("", "claude-test", "http://unused")
	_, err := b.Generate(context.Background(), "anything", keywordLibrary(), nil, false)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Error(t, b.Validate())
}

func TestAnthropicHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := NewAnthropicBackend("test-key", "claude-test", srv.URL)
	_, err := b.Generate(context.Background(), "anything", keywordLibrary(), nil, false)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
}

func TestAnthropicNoParseableAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicTextResponse("I could not decide on any tracks."))
	}))
	defer srv.Close()

	b := NewAnthropicBackend("test-key", "claude-test", srv.URL)
	_, err := b.Generate(context.Background(), "anything", keywordLibrary(), nil, false)
	assert.ErrorIs(t, err, ErrNoParseableArray)
}

func TestAnthropicEmptySelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicTextResponse("[]"))
	}))
	defer srv.Close()

	b := NewAnthropicBackend("test-key", "claude-test", srv.URL)
	_, err := b.Generate(context.Background(), "anything", keywordLibrary(), nil, false)
	assert.ErrorIs(t, err, ErrEmptySelection)
}
