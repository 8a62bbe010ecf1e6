package model

import "encoding/json"

// AnthropicMessage is one turn in an Anthropic messages API conversation.
// Content is either a plain string (initial user prompt) or a slice of
// AnthropicContentBlock (assistant turns and tool results).
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// AnthropicContentBlock is a single content block in a message. The Type
// field selects which of the remaining fields are meaningful:
// "text" uses Text, "tool_use" uses ID/Name/Input, and "tool_result"
// uses ToolUseID/Content.
type AnthropicContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

// AnthropicTool declares a callable tool with a JSON Schema input spec.
type AnthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// AnthropicRequest represents a request to the Anthropic messages API.
type AnthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []AnthropicMessage `json:"messages"`
	Tools     []AnthropicTool    `json:"tools,omitempty"`
}

// AnthropicResponse represents a response from the Anthropic messages API.
type AnthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Role       string                  `json:"role"`
	StopReason string                  `json:"stop_reason"`
	Content    []AnthropicContentBlock `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
