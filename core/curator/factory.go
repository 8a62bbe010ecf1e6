package curator

import (
	"fmt"
	"strings"

	"vibelist/config"
)

// ResolveAnthropicModel maps a preset name to a concrete Anthropic model id.
// Anything that is not a known preset passes through as a full model id.
func ResolveAnthropicModel(preset string) string {
	switch strings.ToLower(preset) {
	case "fast", "haiku":
		return "claude-3-5-haiku-20241022"
	case "balanced", "sonnet":
		return "claude-3-5-sonnet-20240620"
	case "best", "opus":
		return "claude-sonnet-4-5-20250929"
	}
	return preset
}

// ResolveOpenAIModel maps a preset name to a concrete OpenAI model id.
// Anything that is not a known preset passes through as a full model id.
func ResolveOpenAIModel(preset string) string {
	switch strings.ToLower(preset) {
	case "fast", "mini":
		return "gpt-4o-mini"
	case "balanced":
		return "gpt-4o"
	case "best":
		return "gpt-4"
	}
	return preset
}

// New builds the backend named by name using cfg for credentials and knobs.
// runtime is only needed for the "local" backend and may be nil otherwise.
func New(name string, cfg *config.Config, runtime InferenceRuntime) (Backend, error) {
	switch strings.ToLower(name) {
	case "anthropic":
		return NewAnthropicBackend(
			cfg.AnthropicAPIKey,
			ResolveAnthropicModel(cfg.AnthropicModel),
			cfg.AnthropicBaseURL,
		), nil

	case "openai":
		return NewOpenAIBackend(
			cfg.OpenAIAPIKey,
			ResolveOpenAIModel(cfg.OpenAIModel),
			cfg.OpenAIBaseURL,
			cfg.MaxPromptTracks,
			cfg.Temperature,
		), nil

	case "openai-tools":
		return NewOpenAIToolsBackend(
			cfg.OpenAIAPIKey,
			ResolveOpenAIModel(cfg.OpenAIModel),
			cfg.OpenAIBaseURL,
		), nil

	case "local":
		if runtime == nil {
			return nil, fmt.Errorf("%w: local backend requires an inference runtime", ErrModelLoad)
		}
		return NewLocalBackend(
			runtime,
			cfg.LocalModelPath,
			cfg.LocalContextSize,
			cfg.LocalThreads,
			cfg.LocalMaxTokens,
			cfg.LocalPromptTracks,
			cfg.Temperature,
		), nil

	case "keyword":
		b := NewKeywordBackend()
		b.MinScore = cfg.KeywordMinScore
		b.MaxResults = cfg.KeywordMaxResults
		return b, nil
	}

	return nil, fmt.Errorf("unknown backend %q (valid: anthropic, openai, openai-tools, local, keyword)", name)
}
