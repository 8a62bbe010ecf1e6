package curator

import (
	"context"

	"vibelist/model"
)

// StreamFunc receives incremental generation output. Chunks arrive with
// final=false as text becomes available; the last call carries the complete
// accumulated text with final=true. Callbacks run synchronously on the
// calling goroutine. Backends without token-level streaming call it once
// with the full text.
type StreamFunc func(chunk string, final bool)

// Backend generates an ordered track selection for a listening request.
// Implementations: Anthropic tool-calling, OpenAI tool-calling, OpenAI
// single-shot, local model, keyword scoring.
type Backend interface {
	// Generate returns the selected library indices, in playlist order.
	// stream may be nil. verbose surfaces intermediate detail through the
	// logger but never changes the result.
	Generate(ctx context.Context, userPrompt string, library []model.Track, stream StreamFunc, verbose bool) ([]int, error)

	// Name returns the backend name for display and logging.
	Name() string

	// Validate reports whether the backend is ready to generate
	// (API key present, model file exists, ...).
	Validate() error
}

func emit(stream StreamFunc, chunk string, final bool) {
	if stream != nil {
		stream(chunk, final)
	}
}
