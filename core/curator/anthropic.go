package curator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vibelist/core/search"
	"vibelist/logger"
	"vibelist/model"
)

const anthropicAPIVersion = "2023-06-01"

// AnthropicBackend curates playlists through the Anthropic messages API
// using tool calling: the model queries the library through search tools
// over multiple turns before committing to a track selection.
type AnthropicBackend struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int

	httpClient *http.Client
}

// NewAnthropicBackend creates an Anthropic tool-calling backend.
func NewAnthropicBackend(apiKey, modelName, baseURL string) *AnthropicBackend {
	return &AnthropicBackend{
		APIKey:    apiKey,
		Model:     modelName,
		BaseURL:   baseURL,
		MaxTokens: 4096,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Name returns the backend name.
func (b *AnthropicBackend) Name() string { return "anthropic" }

// Validate checks the API key is present.
func (b *AnthropicBackend) Validate() error {
	if b.APIKey == "" {
		return fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrMissingCredential)
	}
	return nil
}

func anthropicTools() []model.AnthropicTool {
	specs := toolCatalogue()
	tools := make([]model.AnthropicTool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, model.AnthropicTool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": spec.Properties,
				"required":   spec.Required,
			},
		})
	}
	return tools
}

func (b *AnthropicBackend) sendMessage(ctx context.Context, req model.AnthropicRequest) (*model.AnthropicResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed model.AnthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return &parsed, nil
}

// Generate runs the bounded tool-call conversation. Each assistant turn
// either requests tool executions, which are dispatched against the search
// index and echoed back as tool results, or ends the conversation with a
// final text answer containing the selected indices.
func (b *AnthropicBackend) Generate(ctx context.Context, userPrompt string, library []model.Track, stream StreamFunc, verbose bool) ([]int, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(library) == 0 {
		return nil, ErrEmptyLibrary
	}

	ix := search.NewIndex(library)
	tools := anthropicTools()

	messages := []model.AnthropicMessage{
		{Role: "user", Content: toolLoopPrompt(userPrompt, len(library))},
	}

	logger.Info("anthropic backend generating playlist",
		logger.String("model", b.Model),
		logger.Int("libraryTracks", len(library)))

	for turn := 0; turn < maxToolTurns; turn++ {
		resp, err := b.sendMessage(ctx, model.AnthropicRequest{
			Model:     b.Model,
			MaxTokens: b.MaxTokens,
			Messages:  messages,
			Tools:     tools,
		})
		if err != nil {
			return nil, err
		}

		if verbose {
			logger.Debug("anthropic turn completed",
				logger.Int("turn", turn+1),
				logger.String("stopReason", resp.StopReason),
				logger.Int("inputTokens", resp.Usage.InputTokens),
				logger.Int("outputTokens", resp.Usage.OutputTokens))
		}

		if resp.StopReason != "tool_use" {
			text := collectText(resp.Content)
			emit(stream, text, true)

			indices := ParseAbsoluteResponse(text, len(library))
			if len(indices) == 0 {
				if _, ok := extractArray(text); !ok {
					return nil, ErrNoParseableArray
				}
				return nil, ErrEmptySelection
			}
			logger.Info("anthropic backend generated playlist",
				logger.Int("tracks", len(indices)),
				logger.Int("turns", turn+1))
			return indices, nil
		}

		// Echo the assistant turn back verbatim, then answer every
		// tool_use block with a matching tool_result.
		messages = append(messages, model.AnthropicMessage{
			Role:    "assistant",
			Content: resp.Content,
		})

		var results []model.AnthropicContentBlock
		for _, block := range resp.Content {
			if block.Type != "tool_use" {
				continue
			}

			var args map[string]any
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					logger.Warn("malformed tool input",
						logger.String("tool", block.Name),
						logger.ErrorField(err))
					results = append(results, model.AnthropicContentBlock{
						Type:      "tool_result",
						ToolUseID: block.ID,
						Content:   `{"error": "invalid tool arguments"}`,
					})
					continue
				}
			}

			payload, err := json.Marshal(dispatchTool(ix, block.Name, args))
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool result: %w", err)
			}
			results = append(results, model.AnthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: block.ID,
				Content:   string(payload),
			})
		}

		messages = append(messages, model.AnthropicMessage{
			Role:    "user",
			Content: results,
		})
	}

	return nil, ErrTurnBudgetExceeded
}

func collectText(blocks []model.AnthropicContentBlock) string {
	var text string
	for _, block := range blocks {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}
