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

// OpenAIToolsBackend curates playlists through the OpenAI chat completions
// API with function calling. Conversation shape mirrors AnthropicBackend;
// only the wire schema differs.
type OpenAIToolsBackend struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int

	httpClient *http.Client
}

// NewOpenAIToolsBackend creates an OpenAI tool-calling backend.
func NewOpenAIToolsBackend(apiKey, modelName, baseURL string) *OpenAIToolsBackend {
	return &OpenAIToolsBackend{
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
func (b *OpenAIToolsBackend) Name() string { return "openai-tools" }

// Validate checks the API key is present.
func (b *OpenAIToolsBackend) Validate() error {
	if b.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredential)
	}
	return nil
}

func openAITools() []model.OpenAITool {
	specs := toolCatalogue()
	tools := make([]model.OpenAITool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, model.OpenAITool{
			Type: "function",
			Function: model.OpenAIFunctionDef{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": spec.Properties,
					"required":   spec.Required,
				},
			},
		})
	}
	return tools
}

func (b *OpenAIToolsBackend) sendChat(ctx context.Context, req model.OpenAIChatRequest) (*model.OpenAIChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)

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

	var parsed model.OpenAIChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", ErrMalformedEnvelope)
	}
	return &parsed, nil
}

// Generate runs the bounded tool-call conversation against the OpenAI API.
// Function arguments arrive JSON-encoded inside a string and are parsed a
// second time; a call with unparseable arguments gets an error tool message
// while the remaining calls in the same turn still execute.
func (b *OpenAIToolsBackend) Generate(ctx context.Context, userPrompt string, library []model.Track, stream StreamFunc, verbose bool) ([]int, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(library) == 0 {
		return nil, ErrEmptyLibrary
	}

	ix := search.NewIndex(library)
	tools := openAITools()

	messages := []model.OpenAIChatMessage{
		{Role: "user", Content: toolLoopPrompt(userPrompt, len(library))},
	}

	logger.Info("openai-tools backend generating playlist",
		logger.String("model", b.Model),
		logger.Int("libraryTracks", len(library)))

	for turn := 0; turn < maxToolTurns; turn++ {
		resp, err := b.sendChat(ctx, model.OpenAIChatRequest{
			Model:      b.Model,
			Messages:   messages,
			MaxTokens:  b.MaxTokens,
			Tools:      tools,
			ToolChoice: "auto",
		})
		if err != nil {
			return nil, err
		}

		choice := resp.Choices[0]
		if verbose {
			logger.Debug("openai turn completed",
				logger.Int("turn", turn+1),
				logger.String("finishReason", choice.FinishReason),
				logger.Int("totalTokens", resp.Usage.TotalTokens))
		}

		if len(choice.Message.ToolCalls) == 0 {
			text := choice.Message.Content
			emit(stream, text, true)

			indices := ParseAbsoluteResponse(text, len(library))
			if len(indices) == 0 {
				if _, ok := extractArray(text); !ok {
					return nil, ErrNoParseableArray
				}
				return nil, ErrEmptySelection
			}
			logger.Info("openai-tools backend generated playlist",
				logger.Int("tracks", len(indices)),
				logger.Int("turns", turn+1))
			return indices, nil
		}

		messages = append(messages, choice.Message)

		for _, call := range choice.Message.ToolCalls {
			// Arguments is itself a JSON document inside the string.
			var args map[string]any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				logger.Warn("malformed tool arguments",
					logger.String("tool", call.Function.Name),
					logger.ErrorField(err))
				messages = append(messages, model.OpenAIChatMessage{
					Role:       "tool",
					ToolCallID: call.ID,
					Content:    `{"error": "invalid tool arguments"}`,
				})
				continue
			}

			payload, err := json.Marshal(dispatchTool(ix, call.Function.Name, args))
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool result: %w", err)
			}
			messages = append(messages, model.OpenAIChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    string(payload),
			})
		}
	}

	return nil, ErrTurnBudgetExceeded
}
