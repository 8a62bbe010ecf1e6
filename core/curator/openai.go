package curator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vibelist/logger"
	"vibelist/model"
)

// OpenAIBackend curates playlists with a single chat completion: the whole
// library (or a random sample of it) is enumerated in the prompt and the
// model answers with row numbers. No tools, one round trip, retried once.
type OpenAIBackend struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Prompt      PromptConfig

	retryDelay time.Duration

	httpClient *http.Client
}

// NewOpenAIBackend creates a single-shot OpenAI backend. maxPromptTracks
// caps how many library rows the prompt enumerates.
func NewOpenAIBackend(apiKey, modelName, baseURL string, maxPromptTracks int, temperature float64) *OpenAIBackend {
	cfg := DefaultPromptConfig()
	cfg.MaxTracksInPrompt = maxPromptTracks
	return &OpenAIBackend{
		APIKey:      apiKey,
		Model:       modelName,
		BaseURL:     baseURL,
		MaxTokens:   1024,
		Temperature: temperature,
		Prompt:      cfg,
		retryDelay:  2 * time.Second,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Name returns the backend name.
func (b *OpenAIBackend) Name() string { return "openai" }

// Validate checks the API key is present.
func (b *OpenAIBackend) Validate() error {
	if b.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredential)
	}
	return nil
}

func (b *OpenAIBackend) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(model.OpenAIChatRequest{
		Model: b.Model,
		Messages: []model.OpenAIChatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   b.MaxTokens,
		Temperature: b.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed model.OpenAIChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrMalformedEnvelope)
	}
	return parsed.Choices[0].Message.Content, nil
}

// Generate builds the enumerated prompt, requests a completion (two attempts
// with a fixed delay between them), and maps the model's row numbers back to
// library indices.
func (b *OpenAIBackend) Generate(ctx context.Context, userPrompt string, library []model.Track, stream StreamFunc, verbose bool) ([]int, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(library) == 0 {
		return nil, ErrEmptyLibrary
	}

	prompt, sampled := BuildPrompt(userPrompt, library, b.Prompt)

	logger.Info("openai backend generating playlist",
		logger.String("model", b.Model),
		logger.Int("libraryTracks", len(library)),
		logger.Int("promptTracks", len(sampled)))
	if verbose {
		logger.Debug("single-shot prompt built", logger.Int("promptBytes", len(prompt)))
	}

	const maxAttempts = 2
	var content string
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, lastErr = b.complete(ctx, prompt)
		if lastErr == nil {
			break
		}
		logger.Warn("completion attempt failed",
			logger.Int("attempt", attempt),
			logger.ErrorField(lastErr))
		if attempt < maxAttempts {
			select {
			case <-time.After(b.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	emit(stream, content, true)

	indices := ParseRowResponse(content, sampled)
	if len(indices) == 0 {
		if _, ok := extractArray(content); !ok {
			return nil, ErrNoParseableArray
		}
		return nil, ErrEmptySelection
	}

	logger.Info("openai backend generated playlist", logger.Int("tracks", len(indices)))
	return indices, nil
}
